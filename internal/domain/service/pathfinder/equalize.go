package pathfinder

import (
	"errors"
	"fmt"
	"math"

	"currency_flip/internal/domain/entity"
)

var (
	// ErrInfeasiblePath на каком-то шаге объём округлился до нуля.
	ErrInfeasiblePath = errors.New("infeasible path")
	// ErrNegativeVolume политика вернула отрицательный объём сделки.
	ErrNegativeVolume = errors.New("negative trade volume")
)

// Equalize рассчитывает целые объёмы сделок вдоль пути так, чтобы полученное
// на шаге i в точности оплачивало шаг i+1. Объём первого шага ограничен
// политикой, остальных стоком контрагентов.
//
// Возвращает ErrInfeasiblePath, если путь не исполним, ErrNegativeVolume при
// отрицательном объёме политики и ошибку с кодом MalformedOffer для котировок
// с неположительным курсом. Очень большой объём политики (вплоть до
// math.MaxInt) означает отсутствие ограничения.
func Equalize(path Path, policy Policy) ([]entity.Edge, error) {
	if err := path.validate(); err != nil {
		return nil, err
	}

	edges := make([]entity.Edge, len(path))
	for i, offer := range path {
		edges[i] = entity.NewEdge(offer)
	}

	first := &edges[0]
	sellCap := policy.MaxTradeVolume(first.Have)
	if sellCap < 0 {
		return nil, fmt.Errorf("%w: %d of %s", ErrNegativeVolume, sellCap, first.Have)
	}

	// Произведение сравнивается во float64, в int оно попадает только
	// когда меньше стока.
	if buyCap := math.Floor(first.ConversionRate * float64(sellCap)); buyCap < float64(first.Stock) {
		first.Stock = int(buyCap)
	}

	for i := range edges {
		e := &edges[i]
		e.Paid = int(math.Floor(float64(e.Stock) / e.ConversionRate))
		e.Received = int(math.Floor(float64(e.Paid) * e.ConversionRate))
	}

	// Узкое место в конце пути доходит до начала за len(path) проходов,
	// по одному шагу за проход.
	for range len(edges) {
		for i := 1; i < len(edges); i++ {
			left, right := &edges[i-1], &edges[i]

			if left.Received <= 0 || left.Paid <= 0 || right.Paid <= 0 || right.Received <= 0 {
				return nil, ErrInfeasiblePath
			}

			if left.Received > right.Paid {
				factor := float64(left.Received) / float64(right.Paid)
				left.Paid = int(math.Ceil(float64(left.Paid) / factor))
				left.Received = right.Paid
			}

			if left.Received < right.Paid {
				factor := float64(right.Paid) / float64(left.Received)
				right.Received = int(math.Floor(float64(right.Received) / factor))
				right.Paid = left.Received
			}
		}
	}

	for _, e := range edges {
		if e.Paid <= 0 || e.Received <= 0 {
			return nil, ErrInfeasiblePath
		}
	}

	return edges, nil
}
