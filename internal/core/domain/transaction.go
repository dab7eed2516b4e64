package domain

import "github.com/shopspring/decimal"

// TransactionType indicates whether a transaction row is the debit or the
// credit leg of a funds movement.
type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

// Transaction is immutable once created. A single funds movement is recorded
// as two rows — one debit, one credit — sharing the same account pair and
// amount. The duplication lets an account's history be queried uniformly by
// filtering on transaction_type relative to "am I sender or receiver".
type Transaction struct {
	TransactionID   int64           `json:"transactionID"`
	SenderNumber    string          `json:"senderNumber"`
	ReceiverNumber  string          `json:"receiverNumber"`
	CurrencyCode    string          `json:"currencyCode"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"` // Always positive
	TransactionType TransactionType `json:"transactionType"`
	AuditFields
}

// TransferKind distinguishes a transfer between the requester's own accounts
// from one to another user's account. The difference is audit wording and
// notification dispatch, never accounting effect.
type TransferKind string

const (
	TransferSelf         TransferKind = "self"
	TransferCounterparty TransferKind = "counterparty"
)

// DoubleEntryPair builds the two transaction rows for one funds movement in a
// single call so the pair can never be constructed non-atomically.
func DoubleEntryPair(sender, receiver, currencyCode string, amount decimal.Decimal, kind TransferKind) [2]Transaction {
	debitDescription := "transfer between own accounts"
	creditDescription := "transfer between own accounts"
	if kind == TransferCounterparty {
		debitDescription = "transfer to another user"
		creditDescription = "deposit from another user"
	}

	return [2]Transaction{
		{
			SenderNumber:    sender,
			ReceiverNumber:  receiver,
			CurrencyCode:    currencyCode,
			Description:     debitDescription,
			Amount:          amount,
			TransactionType: Debit,
		},
		{
			SenderNumber:    sender,
			ReceiverNumber:  receiver,
			CurrencyCode:    currencyCode,
			Description:     creditDescription,
			Amount:          amount,
			TransactionType: Credit,
		},
	}
}
