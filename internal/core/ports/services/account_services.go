package services

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
)

// AccountSvcFacade exposes account reads for the API surface.
type AccountSvcFacade interface {
	// ListAccounts returns the requesting user's accounts with balances.
	ListAccounts(ctx context.Context, requestingUserID string) ([]domain.Account, error)

	// GetAccountByNumber fetches one account, enforcing ownership.
	GetAccountByNumber(ctx context.Context, requestingUserID string, number string) (*domain.Account, error)
}
