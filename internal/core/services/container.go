package services

import (
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/finflow/exchanger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	oracle gateways.RateOracle,
	gateway gateways.PaymentGateway,
	notifier gateways.Notifier,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Conversion = NewConversionService(oracle)
	container.Account = NewAccountService(repos.AccountRepo)
	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.Transfer = NewTransferService(repos.AccountRepo, repos.TransferRepo, container.Conversion, notifier)
	container.Application = NewApplicationService(repos.AccountRepo, repos.ApplicationRepo, gateway, cfg.ProviderReturnURL)

	return container
}

// Compile-time interface checks.
var (
	_ portssvc.TransferSvcFacade    = (*transferService)(nil)
	_ portssvc.ApplicationSvcFacade = (*applicationService)(nil)
	_ portssvc.ConversionSvcFacade  = (*conversionService)(nil)
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.CurrencySvcFacade    = (*currencyService)(nil)
)
