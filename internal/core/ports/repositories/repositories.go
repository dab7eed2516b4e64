package repositories

// RepositoryProvider bundles all repository implementations for injection
// into the service container.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransferRepo    TransferRepository
	ApplicationRepo ApplicationRepository
	CurrencyRepo    CurrencyRepository
	UserRepo        UserRepository
}
