package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finflow/exchanger/internal/core/domain"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	"github.com/finflow/exchanger/internal/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransferRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTransactionSupport
}

// newPgxTransferRepository creates a new repository for funds movements.
func newPgxTransferRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTransactionSupport) *PgxTransferRepository {
	return &PgxTransferRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransferRepository = (*PgxTransferRepository)(nil)

// SaveTransfer commits one funds movement: both balance deltas and both
// transaction rows in a single database transaction. Account rows are locked
// in a deterministic order before any mutation so concurrent transfers over
// the same accounts serialize instead of deadlocking.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, pair [2]domain.Transaction, deltas map[string]decimal.Decimal) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			logger.Error("Failed to rollback transfer transaction", "error", rbErr)
		}
	}()

	numbers := make([]string, 0, len(deltas))
	for number := range deltas {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	if _, err := r.accountRepo.FindAccountsByNumbersForUpdate(ctx, tx, numbers); err != nil {
		return fmt.Errorf("failed to lock accounts for transfer: %w", err)
	}

	if err := r.accountRepo.AdjustBalancesInTx(ctx, tx, deltas); err != nil {
		return fmt.Errorf("failed to apply transfer balance changes: %w", err)
	}

	insertQuery := `
		INSERT INTO transactions (sender_number, receiver_number, currency_code, description, amount, transaction_type, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7);
	`
	now := time.Now().UTC()
	for _, txn := range pair {
		_, err := tx.Exec(ctx, insertQuery,
			txn.SenderNumber,
			txn.ReceiverNumber,
			txn.CurrencyCode,
			txn.Description,
			txn.Amount,
			txn.TransactionType,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s transaction row: %w", txn.TransactionType, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}

	logger.Info("Transfer persisted",
		"sender_account", pair[0].SenderNumber,
		"receiver_account", pair[0].ReceiverNumber)
	return nil
}

// ListTransactionsByUserID returns the user's history through the two-row
// model: debit rows where one of the user's accounts sent, credit rows where
// one of them received. Newest first.
func (r *PgxTransferRepository) ListTransactionsByUserID(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT t.transaction_id, t.sender_number, t.receiver_number, t.currency_code, t.description, t.amount, t.transaction_type, t.created_at, t.last_updated_at
		FROM transactions t
		WHERE (t.transaction_type = 'debit' AND t.sender_number IN (SELECT number FROM accounts WHERE user_id = $1))
		   OR (t.transaction_type = 'credit' AND t.receiver_number IN (SELECT number FROM accounts WHERE user_id = $1))
		ORDER BY t.created_at DESC, t.transaction_id DESC
		LIMIT $2;
	`

	rows, err := r.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		err := rows.Scan(
			&txn.TransactionID,
			&txn.SenderNumber,
			&txn.ReceiverNumber,
			&txn.CurrencyCode,
			&txn.Description,
			&txn.Amount,
			&txn.TransactionType,
			&txn.CreatedAt,
			&txn.LastUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for user %s: %w", userID, err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for user %s: %w", userID, err)
	}
	return transactions, nil
}
