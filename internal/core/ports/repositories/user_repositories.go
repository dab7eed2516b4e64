package repositories

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
)

// UserRepository is a read-only view of externally managed user profiles,
// used for ownership resolution and notification preferences.
type UserRepository interface {
	// FindUserByAccountNumber resolves the owner of an account.
	FindUserByAccountNumber(ctx context.Context, number string) (*domain.User, error)
}
