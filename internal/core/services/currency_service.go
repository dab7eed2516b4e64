package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/finflow/exchanger/internal/core/domain"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
)

// currencyService reads the seeded currency reference data. Currencies are
// immutable at runtime; there is no write path.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepository
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepository) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// ListCurrencies implements portssvc.CurrencySvcFacade.
func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}

// GetCurrencyByShortName implements portssvc.CurrencySvcFacade.
func (s *currencyService) GetCurrencyByShortName(ctx context.Context, shortName string) (*domain.Currency, error) {
	return s.currencyRepo.FindCurrencyByShortName(ctx, strings.ToUpper(shortName))
}
