package entity

import "time"

// Snapshot результат одного прогона поиска для аналитики.
type Snapshot struct {
	ID         string                  `json:"id"`
	League     string                  `json:"league"`
	Currencies []string                `json:"currencies"`
	Offers     []Offer                 `json:"offers"`
	Results    map[string][]Conversion `json:"results"`
	CreatedAt  time.Time               `json:"created_at"`
}

// ConversionCount считает все найденные цепочки по всем валютам.
func (s Snapshot) ConversionCount() int {
	var n int
	for _, conversions := range s.Results {
		n += len(conversions)
	}
	return n
}
