package repositories

import (
	"context"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

// EntryReader defines read operations for accounting entries
type EntryReader interface {
	// FindEntryByLineToken retrieves the entry of a document carrying the given line token.
	// Returns apperrors.ErrNotFound when no such entry exists.
	FindEntryByLineToken(ctx context.Context, docType domain.DocType, docID, lineToken string) (*domain.AccountingEntry, error)

	// FindEntriesByDocument retrieves every entry of a document ordered by line number.
	FindEntriesByDocument(ctx context.Context, docType domain.DocType, docID string) ([]domain.AccountingEntry, error)

	// FindEntriesByRun retrieves every entry of a posting run ordered by line number.
	FindEntriesByRun(ctx context.Context, postingRunID string) ([]domain.AccountingEntry, error)

	// HasEntriesForRun reports whether at least one entry belongs to the run.
	HasEntriesForRun(ctx context.Context, postingRunID string) (bool, error)

	// ListEntries retrieves a page of entries matching the filter, newest posting date first.
	// It returns the entries, a token for the next page, and an error.
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.AccountingEntry, *string, error)

	// ListDocumentRefs retrieves up to limit distinct documents having entries that match the filter.
	ListDocumentRefs(ctx context.Context, filter domain.BatchFilter, limit int) ([]domain.DocumentRef, error)

	// ListEntriesWithoutLegalEntity retrieves up to limit entries whose legal entity was never resolved.
	ListEntriesWithoutLegalEntity(ctx context.Context, limit int) ([]domain.AccountingEntry, error)

	// ListEntriesWithoutRun retrieves up to limit entries of the given doc types that carry no posting run.
	ListEntriesWithoutRun(ctx context.Context, docTypes []domain.DocType, limit int) ([]domain.AccountingEntry, error)
}

// EntryWriter defines write operations for accounting entries
type EntryWriter interface {
	// SaveEntry inserts a new entry.
	// Returns *apperrors.ConflictError when an entry with the same (docType, docID, lineToken)
	// or the same (postingRunID, lineNumber) exists.
	SaveEntry(ctx context.Context, entry domain.AccountingEntry) error

	// PatchEntryLinks backfills the legal entity and/or posting run of an existing entry.
	// Nil arguments leave the column untouched, and a run is only set on an entry without one.
	// Amounts and accounts are never modified. A taken (postingRunID, lineNumber) returns *apperrors.ConflictError.
	PatchEntryLinks(ctx context.Context, entryID string, legalEntityID, postingRunID *string) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
