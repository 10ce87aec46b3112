package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	referenceRepo := newPgxReferenceRepository(dbPool)

	return &portsrepo.RepositoryProvider{
		TxManager:        &BaseRepository{Pool: dbPool},
		EntryRepo:        newPgxEntryRepository(dbPool),
		PostingRunRepo:   newPgxPostingRunRepository(dbPool),
		BrandCountryRepo: referenceRepo,
		DocScopeRepo:     referenceRepo,
		RateRepo:         referenceRepo,
		DocTableRepo:     referenceRepo,
	}
}
