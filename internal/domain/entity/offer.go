package entity

// VendorCounterparty помечает фиксированные обмены у NPC-торговца.
const VendorCounterparty = "__vendor__"

// Offer котировка одного контрагента: платим Have, получаем Want.
// ConversionRate сколько единиц Want дают за единицу Have,
// Stock сколько Want контрагент готов отдать по этому курсу.
type Offer struct {
	League         string  `json:"league"`
	Have           string  `json:"have"`
	Want           string  `json:"want"`
	Counterparty   string  `json:"contact_ign"`
	ConversionRate float64 `json:"conversion_rate"`
	Stock          int     `json:"stock"`
}

func (o Offer) IsVendor() bool {
	return o.Counterparty == VendorCounterparty
}

// Edge Offer с рассчитанными объёмами сделки.
type Edge struct {
	Offer

	Paid     int `json:"paid"`
	Received int `json:"received"`
}

func NewEdge(o Offer) Edge {
	return Edge{Offer: o, Paid: 1, Received: 1}
}
