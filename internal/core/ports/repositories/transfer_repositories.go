package repositories

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferRepository persists funds movements. SaveTransfer commits both
// balance deltas and both transaction rows as a single atomic unit; a failure
// on any part leaves the ledger untouched.
type TransferRepository interface {
	// SaveTransfer locks the affected accounts, applies the balance deltas
	// (keyed by account number) and appends the double-entry pair.
	SaveTransfer(ctx context.Context, pair [2]domain.Transaction, deltas map[string]decimal.Decimal) error

	// ListTransactionsByUserID returns the user's transaction history via the
	// two-row model: debit rows where the user is the sender, credit rows
	// where the user is the receiver, newest first.
	ListTransactionsByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}
