package services

import (
	"context"
	"fmt"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Rounding points are part of the ledger format: the inverse rate is rounded
// to 4 decimal places and the final credit amount to 2. Changing either would
// break compatibility with amounts already recorded.
const (
	inverseRatePrecision  = 4
	creditAmountPrecision = 2
)

// conversionService computes credit amounts from debit amounts using the
// rate oracle. Rates are quoted as units of home currency per one unit of the
// keyed currency; the home currency itself is never keyed.
type conversionService struct {
	oracle gateways.RateOracle
}

// NewConversionService creates a new ConversionService.
func NewConversionService(oracle gateways.RateOracle) portssvc.ConversionSvcFacade {
	return &conversionService{oracle: oracle}
}

var _ portssvc.ConversionSvcFacade = (*conversionService)(nil)

// Convert applies the conversion policy in order:
//   - credit leg is home currency: debitAmount * rate(debitCurrency)
//   - debit leg is home currency:  debitAmount * round(1/rate(creditCurrency), 4)
//   - cross pair: through home currency, rounded to 2 decimals at the end.
//
// All arithmetic is fixed-point decimal; a missing rate for any needed leg is
// a hard error.
func (s *conversionService) Convert(ctx context.Context, debitCurrency, creditCurrency string, debitAmount decimal.Decimal) (decimal.Decimal, error) {
	if debitAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: debit amount must be positive", apperrors.ErrValidation)
	}

	if debitCurrency == creditCurrency {
		return debitAmount, nil
	}

	switch {
	case creditCurrency == domain.HomeCurrencyCode:
		rate, err := s.oracle.GetRate(ctx, debitCurrency)
		if err != nil {
			return decimal.Zero, err
		}
		return debitAmount.Mul(rate).Round(creditAmountPrecision), nil

	case debitCurrency == domain.HomeCurrencyCode:
		rate, err := s.oracle.GetRate(ctx, creditCurrency)
		if err != nil {
			return decimal.Zero, err
		}
		return debitAmount.Mul(inverseRate(rate)).Round(creditAmountPrecision), nil

	default:
		debitRate, err := s.oracle.GetRate(ctx, debitCurrency)
		if err != nil {
			return decimal.Zero, err
		}
		creditRate, err := s.oracle.GetRate(ctx, creditCurrency)
		if err != nil {
			return decimal.Zero, err
		}
		homeAmount := debitAmount.Mul(debitRate)
		return homeAmount.Mul(inverseRate(creditRate)).Round(creditAmountPrecision), nil
	}
}

func inverseRate(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Div(rate).Round(inverseRatePrecision)
}
