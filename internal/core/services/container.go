package services

import (
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// ContainerConfig carries the policies and static data the services are built with.
type ContainerConfig struct {
	BaseCurrency   string
	Chart          *domain.ChartOfAccounts
	DocumentTables map[string]string
	RetryPolicy    RetryPolicy
	BalancePolicy  BalancePolicy
}

// NewContainer creates the service container with properly initialized dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, cfg ContainerConfig) *portssvc.ServiceContainer {
	scopes := NewScopeResolver(repos.BrandCountryRepo, repos.DocScopeRepo)
	converter := NewCurrencyConverter(repos.RateRepo, cfg.BaseCurrency)
	docChecker := NewTableDocumentRegistry(repos.DocTableRepo, cfg.DocumentTables)

	return &portssvc.ServiceContainer{
		Ledger: NewLedgerService(
			repos.TxManager,
			repos.EntryRepo,
			repos.PostingRunRepo,
			scopes,
			converter,
			docChecker,
			cfg.Chart,
		),
		PostingRun: NewPostingRunService(
			repos.TxManager,
			repos.PostingRunRepo,
			repos.EntryRepo,
			WithRetryPolicy(cfg.RetryPolicy),
		),
		Balance:   NewBalanceValidator(repos.EntryRepo, cfg.BalancePolicy),
		Integrity: NewIntegrityService(repos.PostingRunRepo, repos.EntryRepo),
	}
}
