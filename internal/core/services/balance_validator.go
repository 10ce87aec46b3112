package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// BalancePolicy controls when documents are checked.
type BalancePolicy struct {
	// ValidateOnPost enables MaybeValidateOnPost. Configuration forces it on in production.
	ValidateOnPost bool
	// BatchConcurrency bounds the documents checked in parallel by ValidateBatch.
	BatchConcurrency int
	// BatchDocumentLimit caps the documents of one ValidateBatch. Zero means domain.BatchDocumentLimit.
	BatchDocumentLimit int
}

type balanceValidator struct {
	BaseService
	entryRepo portsrepo.EntryReader
	policy    BalancePolicy
}

// NewBalanceValidator creates a new BalanceValidator.
func NewBalanceValidator(entryRepo portsrepo.EntryReader, policy BalancePolicy) portssvc.BalanceSvcFacade {
	if policy.BatchConcurrency < 1 {
		policy.BatchConcurrency = 1
	}
	if policy.BatchDocumentLimit < 1 {
		policy.BatchDocumentLimit = domain.BatchDocumentLimit
	}
	return &balanceValidator{entryRepo: entryRepo, policy: policy}
}

var _ portssvc.BalanceSvcFacade = (*balanceValidator)(nil)

func (v *balanceValidator) ComputeBalance(entries []domain.AccountingEntry) domain.BalanceReport {
	return domain.ComputeBalance(entries)
}

func (v *balanceValidator) AssertInvariants(entries []domain.AccountingEntry) error {
	var doc domain.DocumentRef
	if len(entries) > 0 {
		doc = entries[0].Document()
	}
	return domain.AssertInvariants(doc, entries)
}

// ValidateDocument loads the document's entries (or one run's) and fails with a
// *domain.BalanceViolationError when they are malformed or unbalanced.
func (v *balanceValidator) ValidateDocument(ctx context.Context, docType domain.DocType, docID string, runID *string) (*domain.BalanceReport, error) {
	doc := domain.DocumentRef{DocType: docType, DocID: docID}

	var (
		entries []domain.AccountingEntry
		err     error
	)
	if runID != nil {
		entries, err = v.entryRepo.FindEntriesByRun(ctx, *runID)
	} else {
		entries, err = v.entryRepo.FindEntriesByDocument(ctx, docType, docID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entries of %s: %w", doc, err)
	}

	if err := domain.AssertInvariants(doc, entries); err != nil {
		var violation *domain.BalanceViolationError
		if errors.As(err, &violation) {
			violation.PostingRunID = runID
		}
		return nil, err
	}

	report := domain.ComputeBalance(entries)
	if !report.IsBalanced {
		return &report, &domain.BalanceViolationError{
			Doc:          doc,
			PostingRunID: runID,
			Reason:       "unbalanced",
			Balance:      report,
		}
	}
	return &report, nil
}

func (v *balanceValidator) MaybeValidateOnPost(ctx context.Context, docType domain.DocType, docID string, runID *string) error {
	if !v.policy.ValidateOnPost {
		return nil
	}
	_, err := v.ValidateDocument(ctx, docType, docID, runID)
	if err != nil && errors.Is(err, apperrors.ErrBalanceViolation) {
		v.LogWarn(ctx, "Balance validation failed on post",
			zap.String("doc_type", string(docType)), zap.String("doc_id", docID), zap.Error(err))
	}
	return err
}

// ValidateBatch checks each distinct document matching the filter. Balance violations are
// collected into the report; storage failures abort the sweep. One document past the limit
// is fetched to tell a full sweep from a truncated one.
func (v *balanceValidator) ValidateBatch(ctx context.Context, filter domain.BatchFilter) (*domain.BatchReport, error) {
	limit := v.policy.BatchDocumentLimit
	docs, err := v.entryRepo.ListDocumentRefs(ctx, filter, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents for batch validation: %w", err)
	}
	truncated := len(docs) > limit
	if truncated {
		docs = docs[:limit]
		v.LogWarn(ctx, "Batch balance validation truncated", zap.Int("limit", limit))
	}

	var (
		mu       sync.Mutex
		problems = make([]domain.BatchProblem, 0)
		failed   = make([]bool, len(docs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.policy.BatchConcurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			_, err := v.ValidateDocument(gctx, doc.DocType, doc.DocID, nil)
			if err == nil {
				return nil
			}
			if !errors.Is(err, apperrors.ErrBalanceViolation) {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			failed[i] = true
			problems = append(problems, domain.BatchProblem{Doc: doc, Message: err.Error()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch validation aborted: %w", err)
	}

	// Report problems in document order regardless of completion order.
	ordered := make([]domain.BatchProblem, 0, len(problems))
	byDoc := make(map[domain.DocumentRef]domain.BatchProblem, len(problems))
	for _, p := range problems {
		byDoc[p.Doc] = p
	}
	for i, doc := range docs {
		if failed[i] {
			ordered = append(ordered, byDoc[doc])
		}
	}

	report := &domain.BatchReport{
		CheckedDocuments:    len(docs),
		UnbalancedDocuments: len(ordered),
		Problems:            ordered,
		Truncated:           truncated,
	}
	v.LogInfo(ctx, "Batch balance validation finished",
		zap.Int("checked", report.CheckedDocuments), zap.Int("unbalanced", report.UnbalancedDocuments), zap.Bool("truncated", truncated))
	return report, nil
}
