package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/entity"
	"currency_flip/pkg/errcodes"
)

const defaultListLimit = 20

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}
	return nil
}

// Create сохраняет снимок вместе со всеми найденными цепочками.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *entity.Snapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	schema, rows, err := fromSnapshot(snapshot)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode snapshot")
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO snapshots (id, league, currencies, offers, created_at)
			VALUES (:id, :league, :currencies, :offers, :created_at)`

		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to create snapshot")
		}

		query = `
			INSERT INTO conversions (
				snapshot_id, currency, position, from_item, to_item,
				starting, ending, winnings, transactions
			) VALUES (
				:snapshot_id, :currency, :position, :from_item, :to_item,
				:starting, :ending, :winnings, :transactions
			)`

		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to create conversion")
			}
		}

		return nil
	})
}

func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*entity.Snapshot, error) {
	query := r.db.Rebind(`SELECT * FROM snapshots WHERE id = ?`)

	var schema snapshotSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.SnapshotNotFound, "snapshot not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get snapshot")
	}

	return r.load(ctx, &schema)
}

// Latest возвращает последний снимок лиги.
func (r *SnapshotRepository) Latest(ctx context.Context, league string) (*entity.Snapshot, error) {
	snapshots, err := r.List(ctx, league, 1)
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		return nil, domain.Errorf(errcodes.SnapshotNotFound, "no scans for league %q", league)
	}

	return &snapshots[0], nil
}

// List снимки лиги от новых к старым.
func (r *SnapshotRepository) List(ctx context.Context, league string, limit int) ([]entity.Snapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := r.db.Rebind(`
		SELECT * FROM snapshots
		WHERE league = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	var schemas []snapshotSchema
	if err := r.db.SelectContext(ctx, &schemas, query, league, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list snapshots")
	}

	snapshots := make([]entity.Snapshot, 0, len(schemas))
	for i := range schemas {
		snapshot, err := r.load(ctx, &schemas[i])
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}

	return snapshots, nil
}

func (r *SnapshotRepository) load(ctx context.Context, schema *snapshotSchema) (*entity.Snapshot, error) {
	query := r.db.Rebind(`
		SELECT * FROM conversions
		WHERE snapshot_id = ?
		ORDER BY currency, position`)

	var rows []conversionSchema
	if err := r.db.SelectContext(ctx, &rows, query, schema.ID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get conversions")
	}

	snapshot, err := schema.toDomain(rows)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode snapshot")
	}

	return snapshot, nil
}
