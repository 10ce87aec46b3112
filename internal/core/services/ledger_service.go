package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
	"github.com/SscSPs/posting_ledger/internal/utils/validation"
)

// ledgerService records individual entries and serves entry reads.
type ledgerService struct {
	BaseService
	txManager  portsrepo.TransactionManager
	entryRepo  portsrepo.EntryRepositoryFacade
	runRepo    portsrepo.PostingRunReader
	scopes     portssvc.ScopeResolver
	converter  portssvc.CurrencyConverter
	docChecker portssvc.DocumentExistenceChecker
	chart      *domain.ChartOfAccounts
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	txManager portsrepo.TransactionManager,
	entryRepo portsrepo.EntryRepositoryFacade,
	runRepo portsrepo.PostingRunReader,
	scopes portssvc.ScopeResolver,
	converter portssvc.CurrencyConverter,
	docChecker portssvc.DocumentExistenceChecker,
	chart *domain.ChartOfAccounts,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txManager:  txManager,
		entryRepo:  entryRepo,
		runRepo:    runRepo,
		scopes:     scopes,
		converter:  converter,
		docChecker: docChecker,
		chart:      chart,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateEntry validates the line, then inserts it or returns the entry already recorded
// under its line token. Nothing is written when any check fails.
func (s *ledgerService) CreateEntry(ctx context.Context, in portssvc.CreateEntryInput) (*domain.AccountingEntry, error) {
	if err := s.validateEntryInput(ctx, in); err != nil {
		return nil, err
	}

	var result *domain.AccountingEntry
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		run, err := s.loadTargetRun(ctx, in)
		if err != nil {
			return err
		}

		if in.LineToken != nil && *in.LineToken != "" {
			existing, err := s.entryRepo.FindEntryByLineToken(ctx, in.DocType, in.DocID, *in.LineToken)
			switch {
			case err == nil:
				result, err = s.reconcileExisting(ctx, existing, in, run)
				return err
			case !errors.Is(err, apperrors.ErrNotFound):
				return fmt.Errorf("failed to look up line token: %w", err)
			}
		}

		entry, err := s.buildEntry(ctx, in, run)
		if err != nil {
			return err
		}

		if err := s.entryRepo.SaveEntry(ctx, *entry); err != nil {
			if !apperrors.IsConflict(err) {
				s.LogError(ctx, err, "Failed to save accounting entry", zap.Stringer("doc", entry.Document()))
				return fmt.Errorf("failed to save accounting entry: %w", err)
			}
			if entry.LineToken != nil {
				// A concurrent writer recorded the same line token: re-read instead.
				existing, findErr := s.entryRepo.FindEntryByLineToken(ctx, in.DocType, in.DocID, *entry.LineToken)
				switch {
				case findErr == nil:
					s.LogDebug(ctx, "Line token recorded concurrently, reusing entry", zap.String("entry_id", existing.ID))
					result, err = s.reconcileExisting(ctx, existing, in, run)
					return err
				case !errors.Is(findErr, apperrors.ErrNotFound):
					return fmt.Errorf("failed to re-read entry after duplicate line token: %w", findErr)
				}
			}
			if apperrors.IsConflictOn(err, portsrepo.ConstraintEntryRunLine) {
				return runLineTaken(in.LineNumber, *in.PostingRunID)
			}
			s.LogError(ctx, err, "Failed to save accounting entry", zap.Stringer("doc", entry.Document()))
			return fmt.Errorf("failed to save accounting entry: %w", err)
		}

		s.LogInfo(ctx, "Accounting entry created",
			zap.String("entry_id", entry.ID),
			zap.Stringer("doc", entry.Document()),
			zap.Int("line", entry.LineNumber),
			zap.String("debit", entry.DebitAccount),
			zap.String("credit", entry.CreditAccount),
			zap.String("amount_base", entry.AmountBase.String()))
		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateEntryInput runs the checks that need no transaction.
func (s *ledgerService) validateEntryInput(ctx context.Context, in portssvc.CreateEntryInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.DocType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown docType %q", in.DocType))
	}
	if in.SourceDocType != "" && !in.SourceDocType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown sourceDocType %q", in.SourceDocType))
	}
	if !s.chart.Contains(in.DebitAccount) {
		return apperrors.NewValidationError(fmt.Sprintf("unknown debit account code: %s", in.DebitAccount))
	}
	if !s.chart.Contains(in.CreditAccount) {
		return apperrors.NewValidationError(fmt.Sprintf("unknown credit account code: %s", in.CreditAccount))
	}

	if err := s.checkDocumentExists(ctx, domain.DocumentRef{DocType: in.DocType, DocID: in.DocID}); err != nil {
		return err
	}
	if in.SourceDocType != "" {
		if err := s.checkDocumentExists(ctx, domain.DocumentRef{DocType: in.SourceDocType, DocID: in.SourceDocID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ledgerService) checkDocumentExists(ctx context.Context, doc domain.DocumentRef) error {
	predicate, ok := s.docChecker.CheckerFor(doc.DocType)
	if !ok {
		return fmt.Errorf("%w: no existence check registered for %s", apperrors.ErrReferential, doc.DocType)
	}
	exists, err := predicate(ctx, doc.DocID)
	if err != nil {
		return fmt.Errorf("failed to check document %s: %w", doc, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", apperrors.ErrReferential, doc)
	}
	return nil
}

// loadTargetRun checks that a requested run exists, is POSTED, is not a reversal and belongs to the document.
func (s *ledgerService) loadTargetRun(ctx context.Context, in portssvc.CreateEntryInput) (*domain.PostingRun, error) {
	if in.PostingRunID == nil {
		return nil, nil
	}
	run, err := s.runRepo.FindRunByID(ctx, *in.PostingRunID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: posting run %s", apperrors.ErrReferential, *in.PostingRunID)
		}
		return nil, fmt.Errorf("failed to load posting run %s: %w", *in.PostingRunID, err)
	}
	if run.DocType != in.DocType || run.DocID != in.DocID {
		return nil, apperrors.NewValidationError(fmt.Sprintf("posting run %s belongs to %s:%s", run.ID, run.DocType, run.DocID))
	}
	if run.IsReversal() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("posting run %s is a reversal", run.ID))
	}
	if !run.IsActive() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("posting run %s is %s", run.ID, run.Status))
	}
	if in.LegalEntityID != "" && in.LegalEntityID != run.LegalEntityID {
		return nil, apperrors.NewValidationError(fmt.Sprintf("posting run %s belongs to legal entity %s", run.ID, run.LegalEntityID))
	}
	return run, nil
}

// reconcileExisting returns an entry found by line token, backfilling only a missing
// legal entity or posting run.
func (s *ledgerService) reconcileExisting(ctx context.Context, existing *domain.AccountingEntry, in portssvc.CreateEntryInput, run *domain.PostingRun) (*domain.AccountingEntry, error) {
	needsLegalEntity := existing.Scope.LegalEntityID == ""
	needsRun := in.PostingRunID != nil && existing.PostingRunID == nil
	if !needsLegalEntity && !needsRun {
		return existing, nil
	}

	var legalEntityID, postingRunID *string
	if needsLegalEntity {
		scope, err := s.resolveScope(ctx, in, run)
		if err != nil {
			return nil, err
		}
		legalEntityID = &scope.LegalEntityID
		existing.Scope.LegalEntityID = scope.LegalEntityID
	}
	if needsRun {
		postingRunID = in.PostingRunID
		existing.PostingRunID = in.PostingRunID
	}

	if err := s.entryRepo.PatchEntryLinks(ctx, existing.ID, legalEntityID, postingRunID); err != nil {
		if apperrors.IsConflictOn(err, portsrepo.ConstraintEntryRunLine) {
			return nil, runLineTaken(existing.LineNumber, *in.PostingRunID)
		}
		s.LogError(ctx, err, "Failed to patch accounting entry links", zap.String("entry_id", existing.ID))
		return nil, fmt.Errorf("failed to patch entry %s: %w", existing.ID, err)
	}
	s.LogInfo(ctx, "Accounting entry links patched",
		zap.String("entry_id", existing.ID),
		zap.Bool("legal_entity", needsLegalEntity),
		zap.Bool("posting_run", needsRun))
	return existing, nil
}

// runLineTaken rejects a second entry on a line number of a run, whose mirror token would collide on void.
func runLineTaken(lineNumber int, runID string) error {
	return apperrors.NewValidationError(fmt.Sprintf("line %d is already recorded in posting run %s", lineNumber, runID))
}

func (s *ledgerService) resolveScope(ctx context.Context, in portssvc.CreateEntryInput, run *domain.PostingRun) (domain.Scope, error) {
	explicit := domain.Scope{
		CountryID:     in.CountryID,
		BrandID:       in.BrandID,
		LegalEntityID: in.LegalEntityID,
		MarketplaceID: in.MarketplaceID,
		WarehouseID:   in.WarehouseID,
	}
	if explicit.LegalEntityID == "" && run != nil {
		explicit.LegalEntityID = run.LegalEntityID
	}
	if explicit.IsComplete() {
		return explicit, nil
	}

	req := domain.ScopeRequest{
		Doc:      domain.DocumentRef{DocType: in.DocType, DocID: in.DocID},
		Explicit: explicit,
	}
	if in.SourceDocType != "" {
		req.SourceDoc = &domain.DocumentRef{DocType: in.SourceDocType, DocID: in.SourceDocID}
	}
	scope, err := s.scopes.Resolve(ctx, req)
	if err != nil {
		return domain.Scope{}, err
	}
	if !scope.IsComplete() {
		return domain.Scope{}, fmt.Errorf("%w: incomplete scope for %s", apperrors.ErrScopeResolution, req.Doc)
	}
	if run != nil && scope.LegalEntityID != run.LegalEntityID {
		return domain.Scope{}, apperrors.NewValidationError(fmt.Sprintf("resolved legal entity %s differs from run legal entity %s", scope.LegalEntityID, run.LegalEntityID))
	}
	return scope, nil
}

func (s *ledgerService) buildEntry(ctx context.Context, in portssvc.CreateEntryInput, run *domain.PostingRun) (*domain.AccountingEntry, error) {
	scope, err := s.resolveScope(ctx, in, run)
	if err != nil {
		return nil, err
	}

	amountBase, err := s.converter.ConvertToBase(ctx, in.Amount, in.Currency, in.PostingDate)
	if err != nil {
		return nil, err
	}
	if !amountBase.IsPositive() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("amountBase must be > 0, got %s", amountBase))
	}

	sourceType, sourceID := in.SourceDocType, in.SourceDocID
	if sourceType == "" {
		sourceType, sourceID = in.DocType, in.DocID
	}
	source := in.Source
	if source == "" {
		source = domain.SourceAuto
	}
	var lineToken *string
	if in.LineToken != nil && *in.LineToken != "" {
		lineToken = in.LineToken
	}

	return &domain.AccountingEntry{
		ID:            uuid.NewString(),
		DocType:       in.DocType,
		DocID:         in.DocID,
		SourceDocType: sourceType,
		SourceDocID:   sourceID,
		LineNumber:    in.LineNumber,
		PostingDate:   in.PostingDate,
		DebitAccount:  in.DebitAccount,
		CreditAccount: in.CreditAccount,
		Amount:        in.Amount,
		Currency:      in.Currency,
		AmountBase:    amountBase,
		Scope:         scope,
		Description:   in.Description,
		Source:        source,
		LineToken:     lineToken,
		PostingRunID:  in.PostingRunID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (s *ledgerService) ListByDocument(ctx context.Context, docType domain.DocType, docID string) ([]domain.AccountingEntry, error) {
	entries, err := s.entryRepo.FindEntriesByDocument(ctx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries of %s:%s: %w", docType, docID, err)
	}
	return entries, nil
}

func (s *ledgerService) List(ctx context.Context, filter domain.EntryFilter) (*domain.EntryPage, error) {
	if filter.Limit <= 0 || filter.Limit > domain.DefaultEntryListLimit {
		filter.Limit = domain.DefaultEntryListLimit
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return nil, apperrors.NewValidationError("fromDate must not be after toDate")
	}
	entries, next, err := s.entryRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return &domain.EntryPage{Entries: entries, NextToken: next}, nil
}
