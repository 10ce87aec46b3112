package services

// ServiceContainer holds instances of all the ledger services.
// Business posting services and the ledgerctl commands reach the ledger through it.
type ServiceContainer struct {
	Ledger     LedgerSvcFacade
	PostingRun PostingRunSvcFacade
	Balance    BalanceSvcFacade
	Integrity  IntegritySvcFacade
}
