package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// postingRunService owns the versioned lifecycle of posting runs.
type postingRunService struct {
	BaseService
	txManager portsrepo.TransactionManager
	runRepo   portsrepo.PostingRunRepositoryFacade
	entryRepo portsrepo.EntryRepositoryFacade
	policy    RetryPolicy
	now       func() time.Time
}

// PostingRunServiceOption configures a postingRunService.
type PostingRunServiceOption func(*postingRunService)

// WithRetryPolicy overrides the default create retry policy.
func WithRetryPolicy(policy RetryPolicy) PostingRunServiceOption {
	return func(s *postingRunService) {
		s.policy = policy
	}
}

// WithRunClock overrides the clock stamping postedAt and voidedAt.
func WithRunClock(now func() time.Time) PostingRunServiceOption {
	return func(s *postingRunService) {
		s.now = now
	}
}

// NewPostingRunService creates a new PostingRunService.
func NewPostingRunService(txManager portsrepo.TransactionManager, runRepo portsrepo.PostingRunRepositoryFacade, entryRepo portsrepo.EntryRepositoryFacade, opts ...PostingRunServiceOption) portssvc.PostingRunSvcFacade {
	s := &postingRunService{
		txManager: txManager,
		runRepo:   runRepo,
		entryRepo: entryRepo,
		policy:    DefaultRetryPolicy(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.PostingRunSvcFacade = (*postingRunService)(nil)

func validateRunKey(key domain.RunKey) error {
	if strings.TrimSpace(key.LegalEntityID) == "" {
		return apperrors.NewValidationError("legalEntityId is required for a posting run")
	}
	if !key.DocType.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown docType %q", key.DocType))
	}
	if strings.TrimSpace(key.DocID) == "" {
		return apperrors.NewValidationError("docId is required for a posting run")
	}
	return nil
}

func (s *postingRunService) GetActiveRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error) {
	run, err := s.runRepo.FindActiveRun(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to find active posting run", zap.Stringer("key", key))
		return nil, fmt.Errorf("failed to find active run for %s: %w", key, err)
	}
	return run, nil
}

func (s *postingRunService) HasEntries(ctx context.Context, runID string) (bool, error) {
	return s.entryRepo.HasEntriesForRun(ctx, runID)
}

func (s *postingRunService) ListRuns(ctx context.Context, key domain.RunKey) ([]domain.PostingRun, error) {
	return s.runRepo.ListRunsByKey(ctx, key)
}

// GetOrCreateRun returns the active run of the key or creates one at max+1. The max
// version is read before the active check so a competitor committing in between is seen
// either as the active run or as a uniqueness conflict. A conflict re-reads the active
// run and returns it when visible, otherwise the create is retried until the policy is exhausted.
func (s *postingRunService) GetOrCreateRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error) {
	if err := validateRunKey(key); err != nil {
		return nil, err
	}

	var result *domain.PostingRun
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for attempt := 1; ; attempt++ {
			maxVersion, err := s.maxVersion(ctx, key)
			if err != nil {
				return err
			}
			active, err := s.GetActiveRun(ctx, key)
			if err != nil {
				return err
			}
			if active != nil {
				result = active
				return nil
			}

			run, err := s.insertRun(ctx, key, runLinks{}, maxVersion+1)
			if err == nil {
				result = run
				return nil
			}
			if !apperrors.IsConflict(err) {
				return err
			}

			active, err = s.GetActiveRun(ctx, key)
			if err != nil {
				return err
			}
			if active != nil {
				s.LogDebug(ctx, "Posting run created concurrently, reusing winner",
					zap.Stringer("key", key), zap.String("run_id", active.ID), zap.Int("version", active.Version))
				result = active
				return nil
			}

			if attempt >= s.policy.attempts() {
				s.LogWarn(ctx, "Posting run create retries exhausted", zap.Stringer("key", key), zap.Int("attempts", attempt))
				return fmt.Errorf("%w: could not create posting run for %s after %d attempts", apperrors.ErrConcurrencyConflict, key, attempt)
			}
			s.LogWarn(ctx, "Posting run version conflict, retrying", zap.Stringer("key", key), zap.Int("attempt", attempt))
			if err := s.policy.wait(ctx, attempt); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *postingRunService) CreateNextRun(ctx context.Context, key domain.RunKey, repostedFromRunID *string) (*domain.PostingRun, error) {
	if err := validateRunKey(key); err != nil {
		return nil, err
	}

	var result *domain.PostingRun
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if repostedFromRunID != nil {
			if err := s.checkRepostSource(ctx, key, *repostedFromRunID); err != nil {
				return err
			}
		}
		run, err := s.createNextRun(ctx, key, runLinks{repostedFrom: repostedFromRunID})
		if err != nil {
			return err
		}
		result = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *postingRunService) checkRepostSource(ctx context.Context, key domain.RunKey, sourceID string) error {
	source, err := s.runRepo.FindRunByID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError(fmt.Sprintf("reposted-from run %s not found", sourceID))
		}
		return fmt.Errorf("failed to load reposted-from run %s: %w", sourceID, err)
	}
	if source.Key() != key {
		return apperrors.NewValidationError(fmt.Sprintf("reposted-from run %s belongs to %s, not %s", sourceID, source.Key(), key))
	}
	if source.Status != domain.RunVoided {
		return apperrors.NewValidationError(fmt.Sprintf("reposted-from run %s is %s, only voided runs can be reposted", sourceID, source.Status))
	}
	return nil
}

// runLinks carries the optional lineage of a new run.
type runLinks struct {
	id           string
	repostedFrom *string
	reversalOf   *string
}

// createNextRun creates a run at max+1, recomputing the version after each conflict.
func (s *postingRunService) createNextRun(ctx context.Context, key domain.RunKey, links runLinks) (*domain.PostingRun, error) {
	for attempt := 1; ; attempt++ {
		run, err := s.tryCreateRun(ctx, key, links)
		if err == nil {
			return run, nil
		}
		if !apperrors.IsConflict(err) {
			return nil, err
		}
		if attempt >= s.policy.attempts() {
			s.LogWarn(ctx, "Posting run create retries exhausted", zap.Stringer("key", key), zap.Int("attempts", attempt))
			return nil, fmt.Errorf("%w: could not create next posting run for %s after %d attempts", apperrors.ErrConcurrencyConflict, key, attempt)
		}
		s.LogWarn(ctx, "Posting run version conflict, retrying", zap.Stringer("key", key), zap.Int("attempt", attempt))
		if err := s.policy.wait(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

// tryCreateRun makes one optimistic attempt at version max+1.
// A *apperrors.ConflictError is returned untouched so callers can reconcile.
func (s *postingRunService) tryCreateRun(ctx context.Context, key domain.RunKey, links runLinks) (*domain.PostingRun, error) {
	maxVersion, err := s.maxVersion(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.insertRun(ctx, key, links, maxVersion+1)
}

func (s *postingRunService) maxVersion(ctx context.Context, key domain.RunKey) (int, error) {
	maxVersion, err := s.runRepo.MaxRunVersion(ctx, key.DocType, key.DocID)
	if err != nil {
		return 0, fmt.Errorf("failed to read max run version for %s: %w", key, err)
	}
	return maxVersion, nil
}

func (s *postingRunService) insertRun(ctx context.Context, key domain.RunKey, links runLinks, version int) (*domain.PostingRun, error) {
	id := links.id
	if id == "" {
		id = uuid.NewString()
	}
	run := domain.PostingRun{
		ID:                id,
		LegalEntityID:     key.LegalEntityID,
		DocType:           key.DocType,
		DocID:             key.DocID,
		Version:           version,
		Status:            domain.RunPosted,
		PostedAt:          s.now(),
		RepostedFromRunID: links.repostedFrom,
		ReversalOfRunID:   links.reversalOf,
	}
	if err := s.runRepo.SaveRun(ctx, run); err != nil {
		if apperrors.IsConflict(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save posting run", zap.Stringer("key", key), zap.Int("version", run.Version))
		return nil, fmt.Errorf("failed to save posting run: %w", err)
	}

	s.LogInfo(ctx, "Posting run created",
		zap.String("run_id", run.ID), zap.Stringer("key", key), zap.Int("version", run.Version))
	return &run, nil
}

// VoidRun claims the run with a conditional POSTED to VOIDED update, then creates the
// reversal run and mirrors every entry into it, all inside one transaction. A concurrent
// voider losing the claim writes nothing and reports the winner's reversal.
func (s *postingRunService) VoidRun(ctx context.Context, runID, reason string) (*domain.VoidResult, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, apperrors.NewValidationError("runId is required")
	}
	if strings.TrimSpace(reason) == "" {
		reason = domain.DefaultVoidReason
	}

	var result *domain.VoidResult
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		original, err := s.runRepo.FindRunByID(ctx, runID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: posting run %s", apperrors.ErrNotFound, runID)
			}
			return fmt.Errorf("failed to load posting run %s: %w", runID, err)
		}
		if original.Status == domain.RunVoided {
			result, err = s.alreadyVoided(ctx, *original)
			return err
		}
		if original.IsReversal() {
			return apperrors.NewValidationError(fmt.Sprintf("posting run %s is a reversal and cannot be voided", runID))
		}

		reversalRunID := uuid.NewString()
		voidedAt := s.now()
		if err := s.runRepo.MarkRunVoided(ctx, original.ID, reversalRunID, reason, voidedAt); err != nil {
			if !errors.Is(err, apperrors.ErrConflict) {
				return fmt.Errorf("failed to mark run %s voided: %w", original.ID, err)
			}
			winner, findErr := s.runRepo.FindRunByID(ctx, runID)
			if findErr != nil || winner.Status != domain.RunVoided {
				return err
			}
			s.LogWarn(ctx, "Posting run voided concurrently", zap.String("run_id", runID))
			result, err = s.alreadyVoided(ctx, *winner)
			return err
		}

		reversalRun, err := s.createNextRun(ctx, original.Key(), runLinks{id: reversalRunID, reversalOf: &original.ID})
		if err != nil {
			return err
		}

		entries, err := s.entryRepo.FindEntriesByRun(ctx, original.ID)
		if err != nil {
			return fmt.Errorf("failed to load entries of run %s: %w", original.ID, err)
		}

		for _, e := range entries {
			mirror := e.Reversal(uuid.NewString(), original.ID, reversalRun.ID, voidedAt)
			if err := s.entryRepo.SaveEntry(ctx, mirror); err != nil {
				if apperrors.IsConflict(err) {
					return fmt.Errorf("%w: reversal of entry %s already exists", apperrors.ErrConflict, e.ID)
				}
				s.LogError(ctx, err, "Failed to save reversal entry", zap.String("run_id", original.ID), zap.String("entry_id", e.ID))
				return fmt.Errorf("failed to save reversal entry: %w", err)
			}
		}

		original.Status = domain.RunVoided
		original.VoidedAt = &voidedAt
		original.VoidReason = &reason
		original.ReversalRunID = &reversalRun.ID
		result = &domain.VoidResult{
			OriginalRun:     *original,
			ReversalRun:     reversalRun,
			ReversedEntries: len(entries),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyVoided {
		s.LogInfo(ctx, "Posting run voided",
			zap.String("run_id", runID),
			zap.String("reversal_run_id", result.ReversalRunID()),
			zap.Int("reversed_entries", result.ReversedEntries),
			zap.String("reason", reason))
	}
	return result, nil
}

// alreadyVoided reports a stored void together with its reversal run.
func (s *postingRunService) alreadyVoided(ctx context.Context, run domain.PostingRun) (*domain.VoidResult, error) {
	result := &domain.VoidResult{OriginalRun: run, AlreadyVoided: true}
	if run.ReversalRunID == nil {
		return result, nil
	}
	reversal, err := s.runRepo.FindRunByID(ctx, *run.ReversalRunID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Stores without read isolation can expose the claim before the reversal run lands.
		s.LogDebug(ctx, "Reversal run not visible yet", zap.String("run_id", run.ID))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reversal run %s of %s: %w", *run.ReversalRunID, run.ID, err)
	}
	result.ReversalRun = reversal
	return result, nil
}
