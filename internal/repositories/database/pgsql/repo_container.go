package pgsql

import (
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	transferRepo := newPgxTransferRepository(dbPool, accountRepo)
	applicationRepo := newPgxApplicationRepository(dbPool, accountRepo)

	return portsrepo.RepositoryProvider{
		AccountRepo:     accountRepo,
		TransferRepo:    transferRepo,
		ApplicationRepo: applicationRepo,
		CurrencyRepo:    currencyRepo,
		UserRepo:        userRepo,
	}
}
