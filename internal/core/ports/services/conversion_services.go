package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// ConversionSvcFacade converts a debit amount into the amount to credit,
// consulting the rate oracle for any non-home leg.
type ConversionSvcFacade interface {
	Convert(ctx context.Context, debitCurrency, creditCurrency string, debitAmount decimal.Decimal) (decimal.Decimal, error)
}
