package pathfinder

import (
	"errors"
	"fmt"
	"math"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/entity"
	"currency_flip/pkg/errcodes"
)

// ErrMalformedOffer котировка, по которой нельзя рассчитать объёмы.
var ErrMalformedOffer = errors.New("malformed offer")

// Path цепочка котировок, где Want каждого шага равен Have следующего.
type Path []entity.Offer

// extend возвращает новый путь; исходный не разделяет с ним память.
func (p Path) extend(offer entity.Offer) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)

	return append(next, offer)
}

// visitedAfterFirst проверяет, продавался ли asset на шагах после первого.
// Стартовый актив разрешён, иначе цикл нельзя было бы замкнуть.
func (p Path) visitedAfterFirst(asset string) bool {
	for _, offer := range p[1:] {
		if offer.Have == asset {
			return true
		}
	}
	return false
}

func (p Path) withinStockBounds(policy Policy) bool {
	for _, offer := range p {
		minimum, maximum := policy.StockBoundaries(offer.Have, offer.Want)
		if offer.Stock < minimum || offer.Stock > maximum {
			return false
		}
	}
	return true
}

// validate отсекает котировки, на которых расчёт объёмов делит на ноль.
func (p Path) validate() error {
	if len(p) == 0 {
		return domain.WrapError(fmt.Errorf("empty path: %w", ErrMalformedOffer), errcodes.MalformedOffer, "malformed offer")
	}

	for i, offer := range p {
		rate := offer.ConversionRate
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return domain.WrapError(
				fmt.Errorf("hop %d %s -> %s by %s: conversion rate %v: %w", i, offer.Have, offer.Want, offer.Counterparty, rate, ErrMalformedOffer),
				errcodes.MalformedOffer,
				"malformed offer",
			)
		}

		if offer.Stock < 0 {
			return domain.WrapError(
				fmt.Errorf("hop %d %s -> %s by %s: stock %d: %w", i, offer.Have, offer.Want, offer.Counterparty, offer.Stock, ErrMalformedOffer),
				errcodes.MalformedOffer,
				"malformed offer",
			)
		}
	}

	return nil
}

// CompoundRate произведение курсов вдоль пути, в порядке шагов.
func CompoundRate(path Path) float64 {
	rate := 1.0
	for _, offer := range path {
		rate *= offer.ConversionRate
	}
	return rate
}

// IsProfitable: строго больше единицы, без допуска на погрешность.
func IsProfitable(path Path) bool {
	return CompoundRate(path) > 1.0
}
