package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	"github.com/finflow/exchanger/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements the facade.
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// accountColumns is the shared select list: account fields joined with the
// currency reference row.
const accountColumns = `
	a.account_id, a.user_id, a.number, a.balance, a.created_at, a.last_updated_at,
	c.currency_id, c.numeric_code, c.short_name, c.symbol, c.full_name, c.created_at, c.last_updated_at
`

const accountFromClause = `
	FROM accounts a
	JOIN currencies c ON c.currency_id = a.currency_id
`

// scanAccount scans one joined account+currency row.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.UserID,
		&acc.Number,
		&acc.Balance,
		&acc.CreatedAt,
		&acc.LastUpdatedAt,
		&acc.Currency.CurrencyID,
		&acc.Currency.NumericCode,
		&acc.Currency.ShortName,
		&acc.Currency.Symbol,
		&acc.Currency.FullName,
		&acc.Currency.CreatedAt,
		&acc.Currency.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// FindAccountByNumber retrieves an account by its globally unique number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + accountFromClause + `WHERE a.number = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to find account by number %s: %w", number, err)
	}
	return acc, nil
}

// FindAccountsByUserID retrieves all accounts owned by a user, home currency
// first, then by currency code.
func (r *PgxAccountRepository) FindAccountsByUserID(ctx context.Context, userID string) ([]domain.Account, error) {
	query := `SELECT` + accountColumns + accountFromClause + `
		WHERE a.user_id = $1
		ORDER BY (c.short_name = $2) DESC, c.short_name;`

	rows, err := r.Pool.Query(ctx, query, userID, domain.HomeCurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row for user %s: %w", userID, err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows for user %s: %w", userID, err)
	}
	return accounts, nil
}

// FindUserAccountByCurrency retrieves the user's account in the given currency.
func (r *PgxAccountRepository) FindUserAccountByCurrency(ctx context.Context, userID string, currencyCode string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + accountFromClause + `
		WHERE a.user_id = $1 AND c.short_name = $2;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, userID, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s account for user", apperrors.ErrNotFound, currencyCode)
		}
		return nil, fmt.Errorf("failed to find %s account for user %s: %w", currencyCode, userID, err)
	}
	return acc, nil
}

// FindAccountsByNumbersForUpdate retrieves accounts by numbers and locks the
// rows for update. Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByNumbersForUpdate(ctx context.Context, tx pgx.Tx, numbers []string) (map[string]domain.Account, error) {
	if len(numbers) == 0 {
		return map[string]domain.Account{}, nil
	}

	// Locking a join is awkward, so lock the account rows alone and join the
	// immutable currency reference without a lock.
	query := `SELECT` + accountColumns + `
		FROM (SELECT * FROM accounts WHERE number = ANY($1) ORDER BY account_id FOR UPDATE) a
		JOIN currencies c ON c.currency_id = a.currency_id;`

	rows, err := tx.Query(ctx, query, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[acc.Number] = *acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(numbers) {
		missing := []string{}
		for _, number := range numbers {
			if _, found := accountsMap[number]; !found {
				missing = append(missing, number)
			}
		}
		middleware.GetLoggerFromCtx(ctx).Warn("Some accounts requested for update lock were not found",
			"missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts", apperrors.ErrNotFound)
	}

	return accountsMap, nil
}

// AdjustBalancesInTx applies signed balance deltas within a transaction. The
// WHERE guard refuses any update that would drive a balance negative, backing
// the service-level precondition even under concurrent commits.
func (r *PgxAccountRepository) AdjustBalancesInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3
		WHERE number = $1 AND balance + $2 >= 0;
	`

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	numbers := make([]string, 0, len(deltas))
	for number, delta := range deltas {
		if !delta.IsZero() {
			batch.Queue(query, number, delta, now)
			numbers = append(numbers, number)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23514" {
					// The CHECK constraint backs the WHERE guard independently.
					batchErr = fmt.Errorf("%w: balance constraint rejected update for account %s", apperrors.ErrInvariantViolation, numbers[i])
				} else {
					batchErr = fmt.Errorf("failed to adjust balance for account %s: %w", numbers[i], err)
				}
			}
		} else if ct.RowsAffected() == 0 {
			// The rows were locked and verified present, so a zero-row update
			// means the non-negative guard rejected the delta.
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: balance of account %s would go negative", apperrors.ErrInsufficientFunds, numbers[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance adjustment batch: %w", err)
	}
	return batchErr
}
