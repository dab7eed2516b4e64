package dto

import (
	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountResponse is the API shape of an account.
type AccountResponse struct {
	Number       string          `json:"number"`
	CurrencyCode string          `json:"currencyCode"`
	Symbol       string          `json:"symbol"`
	Balance      decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain account to its API shape.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		Number:       a.Number,
		CurrencyCode: a.Currency.ShortName,
		Symbol:       a.Currency.Symbol,
		Balance:      a.Balance,
	}
}

// ToAccountResponses converts a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToAccountResponse(a)
	}
	return out
}
