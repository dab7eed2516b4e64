package domain

import "github.com/shopspring/decimal"

// Account is a user-owned, single-currency balance holder.
// The account number is a globally unique opaque identifier (UUID), distinct
// from the primary key. Balance never goes below zero; the repository enforces
// that independently of service-level preconditions.
type Account struct {
	AccountID int64           `json:"accountID"`
	UserID    *string         `json:"userID"` // Nullable: balance survives user deletion
	Number    string          `json:"number"` // Globally unique account number (UUID)
	Currency  Currency        `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	AuditFields
}

// OwnedBy reports whether the account currently belongs to the given user.
func (a Account) OwnedBy(userID string) bool {
	return a.UserID != nil && *a.UserID == userID
}
