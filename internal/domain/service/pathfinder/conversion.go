package pathfinder

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"currency_flip/internal/domain/entity"
)

// BuildConversion выравнивает объёмы пути и собирает итоговую цепочку.
// Для неисполнимого пути возвращает nil без ошибки. Неприбыльные цепочки
// возвращаются как есть, отбрасывать их должен вызывающий.
func BuildConversion(path Path, policy Policy) (*entity.Conversion, error) {
	edges, err := Equalize(path, policy)
	if err != nil {
		if errors.Is(err, ErrInfeasiblePath) {
			return nil, nil
		}
		return nil, fmt.Errorf("pathfinder.BuildConversion: %w", err)
	}

	first, last := edges[0], edges[len(edges)-1]

	return &entity.Conversion{
		From:         first.Have,
		To:           last.Want,
		Starting:     first.Paid,
		Ending:       last.Received,
		Winnings:     last.Received - first.Paid,
		Transactions: edges,
	}, nil
}

// SortConversions: по убыванию выигрыша, затем по меньшему вложению,
// затем по ключу цепочки.
func SortConversions(conversions []entity.Conversion) {
	slices.SortStableFunc(conversions, func(a, b entity.Conversion) int {
		if c := cmp.Compare(b.Winnings, a.Winnings); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Starting, b.Starting); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
}

// UniqueByTrader оставляет цепочку, только если ни один её контрагент
// не встречался в ранее оставленных. Порядок сохраняется.
func UniqueByTrader(conversions []entity.Conversion) []entity.Conversion {
	seen := make(map[string]struct{})
	unique := make([]entity.Conversion, 0, len(conversions))

	for _, conversion := range conversions {
		traders := conversion.Traders()

		if slices.ContainsFunc(traders, func(trader string) bool {
			_, ok := seen[trader]
			return ok
		}) {
			continue
		}

		for _, trader := range traders {
			seen[trader] = struct{}{}
		}
		unique = append(unique, conversion)
	}

	return unique
}
