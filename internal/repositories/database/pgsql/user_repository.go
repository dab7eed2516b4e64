package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new read-only repository over user profiles.
func newPgxUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

// FindUserByAccountNumber resolves the owner of an account. Ownerless
// accounts (user_id NULL) report ErrNotFound.
func (r *PgxUserRepository) FindUserByAccountNumber(ctx context.Context, number string) (*domain.User, error) {
	query := `
		SELECT u.user_id, u.first_name, u.last_name, u.phone, u.sms_notification, u.created_at, u.last_updated_at
		FROM users u
		JOIN accounts a ON a.user_id = u.user_id
		WHERE a.number = $1;
	`

	var user domain.User
	err := r.Pool.QueryRow(ctx, query, number).Scan(
		&user.UserID,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.SMSNotification,
		&user.CreatedAt,
		&user.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no owner for account %s", apperrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to find owner of account %s: %w", number, err)
	}
	return &user, nil
}
