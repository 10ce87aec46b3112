package services

import (
	"context"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

// PostingRunReaderSvc defines read operations for posting runs
type PostingRunReaderSvc interface {
	// GetActiveRun returns the highest-version POSTED run of a key, or nil when there is none.
	GetActiveRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error)

	// HasEntries reports whether any entry was written into the run.
	HasEntries(ctx context.Context, runID string) (bool, error)

	// ListRuns returns the run history of a key ordered by version.
	ListRuns(ctx context.Context, key domain.RunKey) ([]domain.PostingRun, error)
}

// PostingRunWriterSvc defines the versioned lifecycle of posting runs
type PostingRunWriterSvc interface {
	// GetOrCreateRun returns the active run of a key, creating version max+1 when none exists.
	// Concurrent callers for one key converge on a single run.
	GetOrCreateRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error)

	// CreateNextRun unconditionally creates a POSTED run at version max+1.
	CreateNextRun(ctx context.Context, key domain.RunKey, repostedFromRunID *string) (*domain.PostingRun, error)

	// VoidRun mirrors every entry of a run into a new reversal run and marks the run VOIDED.
	// Voiding an already voided run returns the stored reversal without side effects.
	VoidRun(ctx context.Context, runID, reason string) (*domain.VoidResult, error)
}

// PostingRunSvcFacade combines all posting-run service interfaces
type PostingRunSvcFacade interface {
	PostingRunReaderSvc
	PostingRunWriterSvc
}
