package market

import "currency_flip/internal/domain/entity"

// vendorStock у NPC-торговца запас не ограничен.
const vendorStock = 1_000_000

type vendorRecipe struct {
	sell string
	buy  string
	rate float64
}

// Фиксированные обмены у NPC-торговца.
var vendorRecipes = []vendorRecipe{ //nolint:gochecknoglobals
	{sell: "Orb of Regret", buy: "Orb of Alchemy", rate: 1},
	{sell: "Orb of Scouring", buy: "Orb of Regret", rate: .5},
	{sell: "Orb of Chance", buy: "Orb of Scouring", rate: .25},
	{sell: "Orb of Fusing", buy: "Orb of Chance", rate: 1},
	{sell: "Jeweller's Orb", buy: "Orb of Fusing", rate: .25},
	{sell: "Jeweller's Orb", buy: "Chromatic Orb", rate: .3333},
	{sell: "Orb of Alteration", buy: "Jeweller's Orb", rate: .5},
	{sell: "Orb of Augmentation", buy: "Orb of Alteration", rate: .25},
	{sell: "Orb of Transmutation", buy: "Orb of Augmentation", rate: .25},
	{sell: "Portal Scroll", buy: "Orb of Transmutation", rate: .1429},
	{sell: "Scroll of Wisdom", buy: "Portal Scroll", rate: 1},
}

// VendorOffers возвращает обмены NPC-торговца для лиги.
func VendorOffers(league string) []entity.Offer {
	offers := make([]entity.Offer, 0, len(vendorRecipes))

	for _, r := range vendorRecipes {
		offers = append(offers, entity.Offer{
			League:         league,
			Have:           r.sell,
			Want:           r.buy,
			Counterparty:   entity.VendorCounterparty,
			ConversionRate: r.rate,
			Stock:          vendorStock,
		})
	}

	return offers
}
