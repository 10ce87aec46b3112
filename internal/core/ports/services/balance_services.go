package services

import (
	"context"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

// BalanceSvcFacade checks the double-entry invariants of documents and runs
type BalanceSvcFacade interface {
	// ComputeBalance returns the per-currency debit and credit totals of entries.
	ComputeBalance(entries []domain.AccountingEntry) domain.BalanceReport

	// AssertInvariants fails on any entry with a blank account or a non-positive base amount.
	AssertInvariants(entries []domain.AccountingEntry) error

	// ValidateDocument checks the entries of a document, or of one of its runs when runID is set.
	ValidateDocument(ctx context.Context, docType domain.DocType, docID string, runID *string) (*domain.BalanceReport, error)

	// MaybeValidateOnPost runs ValidateDocument when the validate-on-post policy is enabled.
	MaybeValidateOnPost(ctx context.Context, docType domain.DocType, docID string, runID *string) error

	// ValidateBatch checks every document matching the filter and reports each failure.
	ValidateBatch(ctx context.Context, filter domain.BatchFilter) (*domain.BatchReport, error)
}

// IntegritySvcFacade sweeps the ledger for posting integrity issues
type IntegritySvcFacade interface {
	// CheckIntegrity reports keys with several active runs and entries missing a run or a legal entity.
	CheckIntegrity(ctx context.Context) (*domain.IntegrityReport, error)
}
