package server

import (
	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/pkg/lox"
	"currency_flip/pkg/rest"
)

func newRESTOffer(o entity.Offer) rest.Offer {
	return rest.Offer{
		League:         o.League,
		Have:           o.Have,
		Want:           o.Want,
		ContactIGN:     o.Counterparty,
		ConversionRate: o.ConversionRate,
		Stock:          o.Stock,
	}
}

func newDomainOffer(o rest.Offer) entity.Offer {
	return entity.Offer{
		League:         o.League,
		Have:           o.Have,
		Want:           o.Want,
		Counterparty:   o.ContactIGN,
		ConversionRate: o.ConversionRate,
		Stock:          o.Stock,
	}
}

func newRESTConversion(c entity.Conversion) rest.Conversion {
	return rest.Conversion{
		From:         c.From,
		To:           c.To,
		Starting:     c.Starting,
		Ending:       c.Ending,
		Winnings:     c.Winnings,
		Transactions: lox.Map(c.Transactions, newRESTTransaction),
	}
}

func newRESTTransaction(t entity.Edge) rest.Transaction {
	return rest.Transaction{
		Offer:    newRESTOffer(t.Offer),
		Paid:     t.Paid,
		Received: t.Received,
		Message:  market.FormatTransaction(t),
	}
}

func newRESTResults(results pathfinder.Results) map[string][]rest.Conversion {
	out := make(map[string][]rest.Conversion, len(results))
	for asset, conversions := range results {
		out[asset] = lox.Map(conversions, newRESTConversion)
	}
	return out
}

func newRESTSnapshot(s entity.Snapshot, withResults bool) rest.Snapshot {
	snapshot := rest.Snapshot{
		ID:          s.ID,
		League:      s.League,
		Currencies:  s.Currencies,
		Offers:      len(s.Offers),
		Conversions: s.ConversionCount(),
		CreatedAt:   s.CreatedAt,
	}

	if withResults {
		snapshot.Results = newRESTResults(s.Results)
	}

	return snapshot
}

func newDomainScanRequest(r rest.ScanRequest) market.ScanRequest {
	return market.ScanRequest{
		League:   r.League,
		Currency: r.Currency,
		FullBulk: r.FullBulk,
		NoFilter: r.NoFilter,
		Limit:    r.Limit,
	}
}
