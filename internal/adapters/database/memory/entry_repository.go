package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/posting_ledger/internal/utils/pagination"
)

func (s *Store) SaveEntry(ctx context.Context, entry domain.AccountingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ID]; exists {
		return &apperrors.ConflictError{Constraint: "accounting_entries_pkey"}
	}
	var tokenKey *lineTokenKey
	if entry.LineToken != nil {
		k := lineTokenKey{docType: entry.DocType, docID: entry.DocID, token: *entry.LineToken}
		if _, exists := s.entryTokens[k]; exists {
			return &apperrors.ConflictError{Constraint: portsrepo.ConstraintEntryLineToken}
		}
		tokenKey = &k
	}
	var lineKey *runLineKey
	if entry.PostingRunID != nil {
		k := runLineKey{runID: *entry.PostingRunID, line: entry.LineNumber}
		if _, exists := s.runLines[k]; exists {
			return &apperrors.ConflictError{Constraint: portsrepo.ConstraintEntryRunLine}
		}
		lineKey = &k
	}

	s.entries[entry.ID] = entry
	s.entryOrder = append(s.entryOrder, entry.ID)
	if tokenKey != nil {
		s.entryTokens[*tokenKey] = entry.ID
	}
	if lineKey != nil {
		s.runLines[*lineKey] = entry.ID
	}
	recordUndo(ctx, func() {
		delete(s.entries, entry.ID)
		s.entryOrder = slices.DeleteFunc(s.entryOrder, func(id string) bool { return id == entry.ID })
		if tokenKey != nil {
			delete(s.entryTokens, *tokenKey)
		}
		if lineKey != nil {
			delete(s.runLines, *lineKey)
		}
	})
	return nil
}

func (s *Store) PatchEntryLinks(ctx context.Context, entryID string, legalEntityID, postingRunID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: accounting entry %s", apperrors.ErrNotFound, entryID)
	}
	after := before
	if legalEntityID != nil {
		after.Scope.LegalEntityID = *legalEntityID
	}

	var lineKey *runLineKey
	if postingRunID != nil && before.PostingRunID == nil {
		k := runLineKey{runID: *postingRunID, line: before.LineNumber}
		if _, exists := s.runLines[k]; exists {
			return &apperrors.ConflictError{Constraint: portsrepo.ConstraintEntryRunLine}
		}
		lineKey = &k
		runID := *postingRunID
		after.PostingRunID = &runID
	}

	s.entries[entryID] = after
	if lineKey != nil {
		s.runLines[*lineKey] = entryID
	}
	recordUndo(ctx, func() {
		s.entries[entryID] = before
		if lineKey != nil {
			delete(s.runLines, *lineKey)
		}
	})
	return nil
}

func (s *Store) FindEntryByLineToken(_ context.Context, docType domain.DocType, docID, lineToken string) (*domain.AccountingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entryTokens[lineTokenKey{docType: docType, docID: docID, token: lineToken}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e := s.entries[id]
	return &e, nil
}

func (s *Store) FindEntriesByDocument(_ context.Context, docType domain.DocType, docID string) ([]domain.AccountingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectEntries(func(e domain.AccountingEntry) bool {
		return e.DocType == docType && e.DocID == docID
	}), nil
}

func (s *Store) FindEntriesByRun(_ context.Context, postingRunID string) ([]domain.AccountingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectEntries(func(e domain.AccountingEntry) bool {
		return e.PostingRunID != nil && *e.PostingRunID == postingRunID
	}), nil
}

func (s *Store) HasEntriesForRun(_ context.Context, postingRunID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.entryOrder {
		if runID := s.entries[id].PostingRunID; runID != nil && *runID == postingRunID {
			return true, nil
		}
	}
	return false, nil
}

// selectEntries returns matching entries ordered by line number, then insertion. Caller holds s.mu.
func (s *Store) selectEntries(match func(domain.AccountingEntry) bool) []domain.AccountingEntry {
	out := make([]domain.AccountingEntry, 0)
	for _, id := range s.entryOrder {
		if e := s.entries[id]; match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out
}

func (s *Store) ListEntries(_ context.Context, filter domain.EntryFilter) ([]domain.AccountingEntry, *string, error) {
	var cursor *pagination.EntryCursor
	if filter.NextToken != nil && *filter.NextToken != "" {
		c, err := pagination.DecodeEntryCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		cursor = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.AccountingEntry, 0)
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if !matchesFilter(e, filter) {
			continue
		}
		if cursor != nil && !cursor.After(e.PostingDate, e.CreatedAt, e.ID) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.PostingDate.Equal(b.PostingDate) {
			return a.PostingDate.After(b.PostingDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultEntryListLimit
	}
	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	next := pagination.EncodeEntryCursor(pagination.EntryCursor{PostingDate: last.PostingDate, CreatedAt: last.CreatedAt, ID: last.ID})
	return page, &next, nil
}

func matchesFilter(e domain.AccountingEntry, f domain.EntryFilter) bool {
	if f.FromDate != nil && e.PostingDate.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && e.PostingDate.After(*f.ToDate) {
		return false
	}
	if f.DebitAccount != "" && e.DebitAccount != f.DebitAccount {
		return false
	}
	if f.CreditAccount != "" && e.CreditAccount != f.CreditAccount {
		return false
	}
	if f.DocType != "" && e.DocType != f.DocType {
		return false
	}
	if f.PostingRunID != "" && (e.PostingRunID == nil || *e.PostingRunID != f.PostingRunID) {
		return false
	}
	return true
}

func (s *Store) ListDocumentRefs(_ context.Context, filter domain.BatchFilter, limit int) ([]domain.DocumentRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[domain.DocumentRef]struct{})
	refs := make([]domain.DocumentRef, 0)
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if filter.From != nil && e.PostingDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.PostingDate.After(*filter.To) {
			continue
		}
		if len(filter.DocTypes) > 0 && !slices.Contains(filter.DocTypes, e.DocType) {
			continue
		}
		ref := e.Document()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].DocType != refs[j].DocType {
			return refs[i].DocType < refs[j].DocType
		}
		return refs[i].DocID < refs[j].DocID
	})
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (s *Store) ListEntriesWithoutLegalEntity(_ context.Context, limit int) ([]domain.AccountingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AccountingEntry, 0)
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if e.Scope.LegalEntityID != "" {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListEntriesWithoutRun(_ context.Context, docTypes []domain.DocType, limit int) ([]domain.AccountingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.AccountingEntry, 0)
	for _, id := range s.entryOrder {
		e := s.entries[id]
		if e.PostingRunID != nil || !slices.Contains(docTypes, e.DocType) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
