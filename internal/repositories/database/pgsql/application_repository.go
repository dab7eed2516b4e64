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

type PgxApplicationRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountTransactionSupport
}

// newPgxApplicationRepository creates a new repository for deposit applications.
func newPgxApplicationRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountTransactionSupport) *PgxApplicationRepository {
	return &PgxApplicationRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.ApplicationRepository = (*PgxApplicationRepository)(nil)

const applicationColumns = `
	application_id, account_number, currency_code, payment_id, amount, type, status, error, created_at, last_updated_at
`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ApplicationID,
		&app.AccountNumber,
		&app.CurrencyCode,
		&app.PaymentID,
		&app.Amount,
		&app.Type,
		&app.Status,
		&app.Error,
		&app.CreatedAt,
		&app.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// CreateApplication inserts a new application together with its first audit
// log row, both in one transaction.
func (r *PgxApplicationRepository) CreateApplication(ctx context.Context, app domain.Application) (*domain.Application, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to rollback application creation", "error", rbErr)
		}
	}()

	insertQuery := `
		INSERT INTO applications (account_number, currency_code, amount, type, status, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + applicationColumns + `;
	`
	now := time.Now().UTC()
	stored, err := scanApplication(tx.QueryRow(ctx, insertQuery,
		app.AccountNumber,
		app.CurrencyCode,
		app.Amount,
		app.Type,
		app.Status,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}

	if err := r.insertLogInTx(ctx, tx, stored.ApplicationID, stored.Status, now); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stored, nil
}

// SetPaymentID stores the provider-assigned payment identifier.
func (r *PgxApplicationRepository) SetPaymentID(ctx context.Context, applicationID int64, paymentID string) error {
	query := `
		UPDATE applications
		SET payment_id = $2, last_updated_at = $3
		WHERE application_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, applicationID, paymentID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: payment %s already attached to an application", apperrors.ErrDuplicate, paymentID)
		}
		return fmt.Errorf("failed to set payment id on application %d: %w", applicationID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %d", apperrors.ErrNotFound, applicationID)
	}
	return nil
}

// FindPendingByPaymentID returns the pending application carrying the given
// provider payment id. Non-pending applications are invisible on purpose:
// a repeated settlement notification finds nothing and becomes a no-op.
func (r *PgxApplicationRepository) FindPendingByPaymentID(ctx context.Context, paymentID string) (*domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE payment_id = $1 AND status = $2;
	`
	app, err := scanApplication(r.Pool.QueryRow(ctx, query, paymentID, domain.StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no pending application for payment %s", apperrors.ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("failed to find pending application for payment %s: %w", paymentID, err)
	}
	return app, nil
}

// SettleApplication atomically completes the application: status transition,
// audit log row and the balance credit commit or fail together. The pending
// guard on the status update makes a concurrent double-settle impossible even
// if two notifications pass the service-level lookup at once.
func (r *PgxApplicationRepository) SettleApplication(ctx context.Context, applicationID int64, accountNumber string, amount decimal.Decimal) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			logger.Error("Failed to rollback settlement transaction", "error", rbErr)
		}
	}()

	if _, err := r.accountRepo.FindAccountsByNumbersForUpdate(ctx, tx, []string{accountNumber}); err != nil {
		return fmt.Errorf("failed to lock account for settlement: %w", err)
	}

	now := time.Now().UTC()
	statusQuery := `
		UPDATE applications
		SET status = $2, last_updated_at = $3
		WHERE application_id = $1 AND status = $4;
	`
	ct, err := tx.Exec(ctx, statusQuery, applicationID, domain.StatusCompleted, now, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to complete application %d: %w", applicationID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %d is not pending", apperrors.ErrNotFound, applicationID)
	}

	if err := r.insertLogInTx(ctx, tx, applicationID, domain.StatusCompleted, now); err != nil {
		return err
	}

	if err := r.accountRepo.AdjustBalancesInTx(ctx, tx, map[string]decimal.Decimal{accountNumber: amount}); err != nil {
		return fmt.Errorf("failed to credit account for settlement: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}

	logger.Info("Application settled",
		"application_id", applicationID,
		"account_number", accountNumber)
	return nil
}

// ListApplicationsByUserID returns the user's applications, newest first.
func (r *PgxApplicationRepository) ListApplicationsByUserID(ctx context.Context, userID string, limit int) ([]domain.Application, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE account_number IN (SELECT number FROM accounts WHERE user_id = $1)
		ORDER BY created_at DESC, application_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications for user %s: %w", userID, err)
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application row for user %s: %w", userID, err)
		}
		applications = append(applications, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows for user %s: %w", userID, err)
	}
	return applications, nil
}

// insertLogInTx appends one row to the append-only status audit trail.
func (r *PgxApplicationRepository) insertLogInTx(ctx context.Context, tx pgx.Tx, applicationID int64, status domain.ApplicationStatus, now time.Time) error {
	query := `
		INSERT INTO application_logs (application_id, status, created_at, last_updated_at)
		VALUES ($1, $2, $3, $3);
	`
	if _, err := tx.Exec(ctx, query, applicationID, status, now); err != nil {
		return fmt.Errorf("failed to insert application log for %d: %w", applicationID, err)
	}
	return nil
}
