package entity

import (
	"strconv"
	"strings"
)

// Conversion цепочка сделок с выровненными объёмами.
type Conversion struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Starting     int    `json:"starting"`
	Ending       int    `json:"ending"`
	Winnings     int    `json:"winnings"`
	Transactions []Edge `json:"transactions"`
}

// Traders возвращает контрагентов в порядке сделок.
func (c Conversion) Traders() []string {
	traders := make([]string, 0, len(c.Transactions))
	for _, t := range c.Transactions {
		traders = append(traders, t.Counterparty)
	}
	return traders
}

// Key однозначно описывает цепочку по активам, контрагентам и курсам.
func (c Conversion) Key() string {
	var sb strings.Builder

	sb.WriteString(c.From)
	for _, t := range c.Transactions {
		sb.WriteString("|")
		sb.WriteString(t.Counterparty)
		sb.WriteString(">")
		sb.WriteString(t.Want)
		sb.WriteString("@")
		sb.WriteString(strconv.FormatFloat(t.ConversionRate, 'f', -1, 64))
	}

	return sb.String()
}
