package handler

import (
	"currency_flip/internal/domain/catalog"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/worker"
)

type Handler struct {
	svc     *market.Service
	scanner *worker.FlipScanner
	catalog *catalog.Catalog
}

func New(svc *market.Service, scanner *worker.FlipScanner, items *catalog.Catalog) *Handler {
	return &Handler{
		svc:     svc,
		scanner: scanner,
		catalog: items,
	}
}
