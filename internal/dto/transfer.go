package dto

import (
	"time"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRequest is the payload for moving funds between two accounts.
// AmountToReceive is computed beforehand via the quote endpoint when a
// currency conversion is involved; for same-currency transfers it equals
// AmountToSend.
type TransferRequest struct {
	SenderNumber    string              `json:"sendersAccount" binding:"required,uuid"`
	AmountToSend    decimal.Decimal     `json:"amountToSend" binding:"required"`
	ReceiverNumber  string              `json:"receiversAccount" binding:"required,uuid"`
	AmountToReceive decimal.Decimal     `json:"amountToReceive" binding:"required"`
	ReceiverKind    domain.TransferKind `json:"receiverType" binding:"required,oneof=self counterparty"`
}

// QuoteRequest asks for the amount to credit for a given debit.
type QuoteRequest struct {
	DebitAccount   string          `json:"debitAccount" binding:"required,uuid"`
	DebitCurrency  string          `json:"debitCurrency" binding:"required,len=3"`
	CreditCurrency string          `json:"creditCurrency" binding:"required,len=3"`
	DebitAmount    decimal.Decimal `json:"debitAmount" binding:"required"`
}

// QuoteResponse carries the computed credit amount.
type QuoteResponse struct {
	CreditAmount decimal.Decimal `json:"creditAmount"`
}

// TransactionResponse is one row of an account's transaction history.
type TransactionResponse struct {
	TransactionID   int64           `json:"transactionID"`
	SenderNumber    string          `json:"sendersAccount"`
	ReceiverNumber  string          `json:"receiversAccount"`
	CurrencyCode    string          `json:"currencyCode"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain transaction to its API shape.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		SenderNumber:    t.SenderNumber,
		ReceiverNumber:  t.ReceiverNumber,
		CurrencyCode:    t.CurrencyCode,
		Description:     t.Description,
		Amount:          t.Amount,
		TransactionType: string(t.TransactionType),
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = ToTransactionResponse(t)
	}
	return out
}
