// Package memory is an in-process implementation of the ledger repositories.
// Writes are visible to every reader as soon as they are applied; a transaction
// that fails undoes its own writes. Uniqueness constraints mirror the SQL schema.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
)

type txKey struct{}

// tx records undo actions for the writes made inside one transaction.
type tx struct {
	undo []func()
}

type runVersionKey struct {
	docType domain.DocType
	docID   string
	version int
}

type lineTokenKey struct {
	docType domain.DocType
	docID   string
	token   string
}

type runLineKey struct {
	runID string
	line  int
}

type rate struct {
	day   time.Time
	value decimal.Decimal
}

// Store holds every table in memory.
type Store struct {
	mu sync.Mutex

	entries      map[string]domain.AccountingEntry
	entryOrder   []string
	entryTokens  map[lineTokenKey]string
	runLines     map[runLineKey]string
	runs         map[string]domain.PostingRun
	runVersions  map[runVersionKey]string
	saveRunCalls int

	brandCountries []domain.BrandCountry
	docScopes      map[domain.DocumentRef]domain.Scope
	rates          map[string][]rate
	tables         map[string]map[string]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries:     make(map[string]domain.AccountingEntry),
		entryTokens: make(map[lineTokenKey]string),
		runLines:    make(map[runLineKey]string),
		runs:        make(map[string]domain.PostingRun),
		runVersions: make(map[runVersionKey]string),
		docScopes:   make(map[domain.DocumentRef]domain.Scope),
		rates:       make(map[string][]rate),
		tables:      make(map[string]map[string]struct{}),
	}
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		TxManager:        s,
		EntryRepo:        s,
		PostingRunRepo:   s,
		BrandCountryRepo: s,
		DocScopeRepo:     s,
		RateRepo:         s,
		DocTableRepo:     s,
	}
}

var (
	_ portsrepo.TransactionManager         = (*Store)(nil)
	_ portsrepo.EntryRepositoryFacade      = (*Store)(nil)
	_ portsrepo.PostingRunRepositoryFacade = (*Store)(nil)
	_ portsrepo.BrandCountryReader         = (*Store)(nil)
	_ portsrepo.DocumentScopeReader        = (*Store)(nil)
	_ portsrepo.CurrencyRateReader         = (*Store)(nil)
	_ portsrepo.DocumentTableReader        = (*Store)(nil)
)

// WithTransaction runs fn in a transaction, joining one already carried by ctx.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	t := &tx{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(t)
			panic(p)
		}
		if err != nil {
			s.rollback(t)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, t))
}

func (s *Store) rollback(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// recordUndo registers an undo action with the transaction in ctx. Caller holds s.mu.
func recordUndo(ctx context.Context, undo func()) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.undo = append(t.undo, undo)
	}
}

// SaveRunCalls returns how many SaveRun calls were made, conflicting ones included.
func (s *Store) SaveRunCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRunCalls
}

// AddBrandCountry maps a brand+country pair to a legal entity.
func (s *Store) AddBrandCountry(bc domain.BrandCountry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brandCountries = append(s.brandCountries, bc)
}

// SetDocumentScope registers the scope of a business document.
func (s *Store) SetDocumentScope(doc domain.DocumentRef, scope domain.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docScopes[doc] = scope
}

// AddRate records the rate-to-base of a currency effective from day.
func (s *Store) AddRate(currency string, day time.Time, value decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[currency] = append(s.rates[currency], rate{day: day, value: value})
}

// AddDocument records a business document row in table.
func (s *Store) AddDocument(table, docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[table] == nil {
		s.tables[table] = make(map[string]struct{})
	}
	s.tables[table][docID] = struct{}{}
}
