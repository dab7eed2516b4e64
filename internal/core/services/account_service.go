package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
)

// accountService exposes account reads for the API surface. All balance
// mutation goes through the transfer and application engines; this service
// never writes.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// ListAccounts implements portssvc.AccountSvcFacade.
func (s *accountService) ListAccounts(ctx context.Context, requestingUserID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByUserID(ctx, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GetAccountByNumber implements portssvc.AccountSvcFacade. Existence of
// accounts owned by other users is obscured as NotFound.
func (s *accountService) GetAccountByNumber(ctx context.Context, requestingUserID string, number string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account %s: %w", number, err)
	}
	if !account.OwnedBy(requestingUserID) {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}
