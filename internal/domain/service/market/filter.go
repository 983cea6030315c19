package market

import (
	"context"
	"log/slog"
	"math"
	"slices"

	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
)

// outlierPercentile котировки с курсом выше этого перцентиля пары
// считаются ошибками или ценовыми ловушками.
const outlierPercentile = 95

// TierSource сообщает ценность предмета: чем меньше, тем ценнее.
type TierSource interface {
	Tier(name string) (int, bool)
}

// ValidOffers отбрасывает котировки, по которым нельзя торговать.
func ValidOffers(ctx context.Context, offers []entity.Offer) []entity.Offer {
	valid := make([]entity.Offer, 0, len(offers))

	for _, offer := range offers {
		rate := offer.ConversionRate
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) || offer.Stock <= 0 {
			logger(ctx).Warn("dropping malformed offer",
				slog.String(logx.FieldTrader, offer.Counterparty),
				slog.String("have", offer.Have),
				slog.String("want", offer.Want),
				slog.Float64("rate", rate),
				slog.Int("stock", offer.Stock),
			)
			continue
		}
		valid = append(valid, offer)
	}

	countDropped("valid", len(offers)-len(valid))

	return valid
}

// ExcludeTraders убирает котировки контрагентов из списка, регистр учитывается.
func ExcludeTraders(offers []entity.Offer, traders []string) []entity.Offer {
	if len(traders) == 0 {
		return offers
	}

	kept := slices.DeleteFunc(slices.Clone(offers), func(o entity.Offer) bool {
		return slices.Contains(traders, o.Counterparty)
	})

	countDropped("excluded_traders", len(offers)-len(kept))

	return kept
}

// ViableOffers отсекает слишком хорошие котировки: за более дешёвый предмет
// нельзя получить больше одного более ценного. Предметы без tier проходят.
func ViableOffers(offers []entity.Offer, tiers TierSource) []entity.Offer {
	kept := slices.DeleteFunc(slices.Clone(offers), func(o entity.Offer) bool {
		return !isViable(o, tiers)
	})

	countDropped("viable", len(offers)-len(kept))

	return kept
}

func isViable(offer entity.Offer, tiers TierSource) bool {
	haveTier, ok := tiers.Tier(offer.Have)
	if !ok {
		return true
	}

	wantTier, ok := tiers.Tier(offer.Want)
	if !ok {
		return true
	}

	return !(haveTier > wantTier && offer.ConversionRate > 1)
}

// WithoutOutliers для каждой пары убирает котировки с курсом строго выше
// 95-го перцентиля курсов этой пары. Порядок оставшихся сохраняется.
func WithoutOutliers(offers []entity.Offer) []entity.Offer {
	rates := make(map[[2]string][]float64)
	for _, o := range offers {
		key := [2]string{o.Have, o.Want}
		rates[key] = append(rates[key], o.ConversionRate)
	}

	boundaries := make(map[[2]string]float64, len(rates))
	for key, values := range rates {
		boundaries[key] = percentile(values, outlierPercentile)
	}

	kept := slices.DeleteFunc(slices.Clone(offers), func(o entity.Offer) bool {
		return o.ConversionRate > boundaries[[2]string{o.Have, o.Want}]
	})

	countDropped("outliers", len(offers)-len(kept))

	return kept
}

// percentile с линейной интерполяцией между соседними рангами.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	return sorted[lower] + (sorted[upper]-sorted[lower])*(rank-float64(lower))
}

// UniqueConversions лучшие цепочки без повторяющихся контрагентов, не больше limit.
func UniqueConversions(conversions []entity.Conversion, limit int) []entity.Conversion {
	unique := pathfinder.UniqueByTrader(conversions)
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func countDropped(filter string, n int) {
	if n > 0 {
		metrics.OffersDroppedTotal.WithLabelValues(filter).Add(float64(n))
	}
}
