package repositories

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
)

// CurrencyRepository reads the seeded currency reference data.
type CurrencyRepository interface {
	// FindCurrencyByShortName retrieves a currency by its short code, e.g. "USD".
	FindCurrencyByShortName(ctx context.Context, shortName string) (*domain.Currency, error)

	// ListCurrencies retrieves all supported currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
