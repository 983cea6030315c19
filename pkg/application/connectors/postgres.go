package connectors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // golang postgres driver
	"github.com/jmoiron/sqlx"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var ErrNotConnected = errors.New("not connected")

// Postgres лениво открывает пул соединений к хранилищу снимков.
type Postgres struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	db   *sqlx.DB
	err  error
	once sync.Once
}

func (p *Postgres) Client(ctx context.Context) (*sqlx.DB, error) {
	p.once.Do(func() {
		db, err := sqlx.ConnectContext(ctx, "pgx", p.DSN)
		if err != nil {
			p.err = fmt.Errorf("sqlx.ConnectContext: %w", err)
			return
		}

		db.SetMaxOpenConns(p.MaxOpenConns)
		db.SetMaxIdleConns(p.MaxIdleConns)
		db.SetConnMaxLifetime(p.ConnMaxLifetime)

		p.db = db

		logger(ctx).Info("postgres connected", slog.String("database", p.database()))
	})

	return p.db, p.err
}

func (p *Postgres) Ping(ctx context.Context) error {
	if p.db == nil {
		return fmt.Errorf("postgres: %w", ErrNotConnected)
	}

	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.PingContext: %w", err)
	}

	return nil
}

func (p *Postgres) Close(ctx context.Context) {
	if p.db == nil {
		return
	}

	if err := p.db.Close(); err != nil {
		logger(ctx).Error("postgresClient.Close", logx.Error(err))
	}

	logger(ctx).Info("postgres disconnected", slog.String("database", p.database()))
}

// database возвращает имя базы без учётных данных из DSN.
func (p *Postgres) database() string {
	u, err := url.Parse(p.DSN)
	if err != nil {
		return ""
	}

	return u.Path
}
