package services

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
)

// CurrencySvcFacade exposes the seeded currency reference data.
type CurrencySvcFacade interface {
	// ListCurrencies returns all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// GetCurrencyByShortName retrieves one currency by its short code.
	GetCurrencyByShortName(ctx context.Context, shortName string) (*domain.Currency, error)
}
