package persistence

import (
	"fmt"
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"

	"currency_flip/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// snapshotSchema строка таблицы snapshots; списки хранятся в JSON.
type snapshotSchema struct {
	ID         string    `db:"id"`
	League     string    `db:"league"`
	Currencies string    `db:"currencies"`
	Offers     string    `db:"offers"`
	CreatedAt  time.Time `db:"created_at"`
}

// conversionSchema строка таблицы conversions, position сохраняет
// порядок сортировки внутри валюты.
type conversionSchema struct {
	SnapshotID   string `db:"snapshot_id"`
	Currency     string `db:"currency"`
	Position     int    `db:"position"`
	From         string `db:"from_item"`
	To           string `db:"to_item"`
	Starting     int    `db:"starting"`
	Ending       int    `db:"ending"`
	Winnings     int    `db:"winnings"`
	Transactions string `db:"transactions"`
}

func fromSnapshot(s *entity.Snapshot) (*snapshotSchema, []conversionSchema, error) {
	currencies, err := json.MarshalToString(s.Currencies)
	if err != nil {
		return nil, nil, fmt.Errorf("json.Marshal currencies: %w", err)
	}

	offers, err := json.MarshalToString(s.Offers)
	if err != nil {
		return nil, nil, fmt.Errorf("json.Marshal offers: %w", err)
	}

	schema := &snapshotSchema{
		ID:         s.ID,
		League:     s.League,
		Currencies: currencies,
		Offers:     offers,
		CreatedAt:  s.CreatedAt.UTC(),
	}

	var rows []conversionSchema

	keys := make([]string, 0, len(s.Results))
	for currency := range s.Results {
		keys = append(keys, currency)
	}
	slices.Sort(keys)

	for _, currency := range keys {
		for i, c := range s.Results[currency] {
			transactions, err := json.MarshalToString(c.Transactions)
			if err != nil {
				return nil, nil, fmt.Errorf("json.Marshal transactions: %w", err)
			}

			rows = append(rows, conversionSchema{
				SnapshotID:   s.ID,
				Currency:     currency,
				Position:     i,
				From:         c.From,
				To:           c.To,
				Starting:     c.Starting,
				Ending:       c.Ending,
				Winnings:     c.Winnings,
				Transactions: transactions,
			})
		}
	}

	return schema, rows, nil
}

func (s *snapshotSchema) toDomain(rows []conversionSchema) (*entity.Snapshot, error) {
	snapshot := &entity.Snapshot{
		ID:        s.ID,
		League:    s.League,
		Results:   make(map[string][]entity.Conversion),
		CreatedAt: s.CreatedAt.UTC(),
	}

	if err := json.UnmarshalFromString(s.Currencies, &snapshot.Currencies); err != nil {
		return nil, fmt.Errorf("json.Unmarshal currencies: %w", err)
	}

	if err := json.UnmarshalFromString(s.Offers, &snapshot.Offers); err != nil {
		return nil, fmt.Errorf("json.Unmarshal offers: %w", err)
	}

	for _, row := range rows {
		conversion := entity.Conversion{
			From:     row.From,
			To:       row.To,
			Starting: row.Starting,
			Ending:   row.Ending,
			Winnings: row.Winnings,
		}

		if err := json.UnmarshalFromString(row.Transactions, &conversion.Transactions); err != nil {
			return nil, fmt.Errorf("json.Unmarshal transactions: %w", err)
		}

		snapshot.Results[row.Currency] = append(snapshot.Results[row.Currency], conversion)
	}

	return snapshot, nil
}
