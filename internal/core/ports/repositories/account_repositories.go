package repositories

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByNumber retrieves an account by its globally unique number.
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)

	// FindAccountsByUserID retrieves all accounts owned by a user.
	FindAccountsByUserID(ctx context.Context, userID string) ([]domain.Account, error)

	// FindUserAccountByCurrency retrieves the user's account in the given currency.
	FindUserAccountByCurrency(ctx context.Context, userID string, currencyCode string) (*domain.Account, error)
}

// AccountTransactionSupport defines operations used inside ledger transactions.
type AccountTransactionSupport interface {
	// FindAccountsByNumbersForUpdate selects accounts and locks the rows for
	// update. Must be called within a transaction.
	FindAccountsByNumbersForUpdate(ctx context.Context, tx pgx.Tx, numbers []string) (map[string]domain.Account, error)

	// AdjustBalancesInTx applies signed balance deltas within a given
	// transaction. A delta that would drive a balance below zero fails with
	// ErrInsufficientFunds and aborts the whole batch.
	AdjustBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountTransactionSupport
}
