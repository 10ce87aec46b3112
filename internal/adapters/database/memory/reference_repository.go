package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

func (s *Store) FindLegalEntity(_ context.Context, brandID, countryID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bc := range s.brandCountries {
		if bc.BrandID == brandID && bc.CountryID == countryID && bc.LegalEntityID != "" {
			return bc.LegalEntityID, nil
		}
	}
	return "", apperrors.ErrNotFound
}

func (s *Store) FindCanonicalPair(_ context.Context, legalEntityID string) (*domain.BrandCountry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := make([]domain.BrandCountry, 0)
	for _, bc := range s.brandCountries {
		if bc.LegalEntityID == legalEntityID {
			pairs = append(pairs, bc)
		}
	}
	if len(pairs) == 0 {
		return nil, apperrors.ErrNotFound
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].BrandID != pairs[j].BrandID {
			return pairs[i].BrandID < pairs[j].BrandID
		}
		return pairs[i].CountryID < pairs[j].CountryID
	})
	return &pairs[0], nil
}

func (s *Store) FindDocumentScope(_ context.Context, doc domain.DocumentRef) (*domain.Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope, ok := s.docScopes[doc]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &scope, nil
}

func (s *Store) FindEffectiveRate(_ context.Context, currency string, on time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  rate
		found bool
	)
	for _, r := range s.rates[currency] {
		if r.day.After(on) {
			continue
		}
		if !found || r.day.After(best.day) {
			best, found = r, true
		}
	}
	if !found {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return best.value, nil
}

func (s *Store) DocumentExists(_ context.Context, table, docID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.tables[table][docID]
	return ok, nil
}
