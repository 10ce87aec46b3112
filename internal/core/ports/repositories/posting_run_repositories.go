package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

// PostingRunReader defines read operations for posting runs
type PostingRunReader interface {
	// FindRunByID retrieves a run by id. Returns apperrors.ErrNotFound when missing.
	FindRunByID(ctx context.Context, runID string) (*domain.PostingRun, error)

	// FindActiveRun retrieves the highest-version POSTED, non-reversal run of a key.
	// Returns apperrors.ErrNotFound when the key has no active run.
	FindActiveRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error)

	// MaxRunVersion returns the highest version recorded for a document, or 0 when it has no runs.
	MaxRunVersion(ctx context.Context, docType domain.DocType, docID string) (int, error)

	// ListRunsByKey retrieves every run of a key ordered by version.
	ListRunsByKey(ctx context.Context, key domain.RunKey) ([]domain.PostingRun, error)

	// FindKeysWithMultipleActiveRuns retrieves keys holding more than one active run.
	FindKeysWithMultipleActiveRuns(ctx context.Context, limit int) ([]domain.RunKey, error)
}

// PostingRunWriter defines write operations for posting runs
type PostingRunWriter interface {
	// SaveRun inserts a new run.
	// Returns *apperrors.ConflictError when the (docType, docID, version) slot is taken.
	SaveRun(ctx context.Context, run domain.PostingRun) error

	// MarkRunVoided transitions a POSTED run to VOIDED and links its reversal run.
	// Returns apperrors.ErrConflict when the run is no longer POSTED.
	MarkRunVoided(ctx context.Context, runID, reversalRunID, reason string, voidedAt time.Time) error
}

// PostingRunRepositoryFacade combines all posting-run repository interfaces
type PostingRunRepositoryFacade interface {
	PostingRunReader
	PostingRunWriter
}
