package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
)

func (s *Store) SaveRun(ctx context.Context, run domain.PostingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveRunCalls++

	if _, exists := s.runs[run.ID]; exists {
		return &apperrors.ConflictError{Constraint: "posting_runs_pkey"}
	}
	k := runVersionKey{docType: run.DocType, docID: run.DocID, version: run.Version}
	if _, exists := s.runVersions[k]; exists {
		return &apperrors.ConflictError{Constraint: portsrepo.ConstraintRunVersion}
	}

	s.runs[run.ID] = run
	s.runVersions[k] = run.ID
	recordUndo(ctx, func() {
		delete(s.runs, run.ID)
		delete(s.runVersions, k)
	})
	return nil
}

func (s *Store) MarkRunVoided(ctx context.Context, runID, reversalRunID, reason string, voidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: posting run %s", apperrors.ErrNotFound, runID)
	}
	if before.Status != domain.RunPosted {
		return fmt.Errorf("%w: posting run %s is %s", apperrors.ErrConflict, runID, before.Status)
	}

	after := before
	after.Status = domain.RunVoided
	after.VoidedAt = &voidedAt
	after.VoidReason = &reason
	after.ReversalRunID = &reversalRunID
	s.runs[runID] = after
	recordUndo(ctx, func() { s.runs[runID] = before })
	return nil
}

func (s *Store) FindRunByID(_ context.Context, runID string) (*domain.PostingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &run, nil
}

func (s *Store) FindActiveRun(_ context.Context, key domain.RunKey) (*domain.PostingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *domain.PostingRun
	for _, run := range s.runs {
		if run.Key() != key || !run.IsActive() {
			continue
		}
		if best == nil || run.Version > best.Version {
			r := run
			best = &r
		}
	}
	if best == nil {
		return nil, apperrors.ErrNotFound
	}
	return best, nil
}

func (s *Store) MaxRunVersion(_ context.Context, docType domain.DocType, docID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxVersion := 0
	for k := range s.runVersions {
		if k.docType == docType && k.docID == docID && k.version > maxVersion {
			maxVersion = k.version
		}
	}
	return maxVersion, nil
}

func (s *Store) ListRunsByKey(_ context.Context, key domain.RunKey) ([]domain.PostingRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PostingRun, 0)
	for _, run := range s.runs {
		if run.Key() == key {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *Store) FindKeysWithMultipleActiveRuns(_ context.Context, limit int) ([]domain.RunKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[domain.RunKey]int)
	for _, run := range s.runs {
		if run.IsActive() {
			counts[run.Key()]++
		}
	}
	keys := make([]domain.RunKey, 0)
	for k, n := range counts {
		if n > 1 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}
