package services

// ServiceContainer holds all service facades for handler wiring.
type ServiceContainer struct {
	Transfer    TransferSvcFacade
	Application ApplicationSvcFacade
	Conversion  ConversionSvcFacade
	Account     AccountSvcFacade
	Currency    CurrencySvcFacade
}
