package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager        TransactionManager
	EntryRepo        EntryRepositoryFacade
	PostingRunRepo   PostingRunRepositoryFacade
	BrandCountryRepo BrandCountryReader
	DocScopeRepo     DocumentScopeReader
	RateRepo         CurrencyRateReader
	DocTableRepo     DocumentTableReader
}

// Names of the uniqueness constraints reported through *apperrors.ConflictError.
const (
	ConstraintRunVersion     = "posting_runs_doc_version_key"
	ConstraintEntryLineToken = "accounting_entries_line_token_key"
	ConstraintEntryRunLine   = "accounting_entries_run_line_key"
)
