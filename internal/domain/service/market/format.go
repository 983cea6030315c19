package market

import (
	"fmt"
	"strconv"
	"strings"

	"currency_flip/internal/domain/entity"
)

// FormatTransaction готовое сообщение контрагенту в игровом чате.
func FormatTransaction(t entity.Edge) string {
	return fmt.Sprintf("@%s Hi, I'd like to buy your %d %s for %d %s in %s. (%sx)",
		t.Counterparty,
		t.Received,
		t.Want,
		t.Paid,
		t.Have,
		t.League,
		strconv.FormatFloat(t.ConversionRate, 'f', -1, 64),
	)
}

// FormatConversion сводка цепочки и сообщения по каждой сделке.
func FormatConversion(c entity.Conversion) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d %s -> %d %s: %d %s\n", c.Starting, c.From, c.Ending, c.To, c.Winnings, c.To)
	for _, t := range c.Transactions {
		sb.WriteString("\t")
		sb.WriteString(FormatTransaction(t))
		sb.WriteString("\n")
	}

	return sb.String()
}
