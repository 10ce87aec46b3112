package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
)

// --- Mock TransactionManager ---
type MockTxManager struct{}

var _ portsrepo.TransactionManager = MockTxManager{}

func (MockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Mock PostingRunRepository ---
type MockPostingRunRepository struct {
	mock.Mock
}

var _ portsrepo.PostingRunRepositoryFacade = (*MockPostingRunRepository)(nil)

func (m *MockPostingRunRepository) FindRunByID(ctx context.Context, runID string) (*domain.PostingRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRun), args.Error(1)
}

func (m *MockPostingRunRepository) FindActiveRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRun), args.Error(1)
}

func (m *MockPostingRunRepository) MaxRunVersion(ctx context.Context, docType domain.DocType, docID string) (int, error) {
	args := m.Called(ctx, docType, docID)
	return args.Int(0), args.Error(1)
}

func (m *MockPostingRunRepository) ListRunsByKey(ctx context.Context, key domain.RunKey) ([]domain.PostingRun, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostingRun), args.Error(1)
}

func (m *MockPostingRunRepository) FindKeysWithMultipleActiveRuns(ctx context.Context, limit int) ([]domain.RunKey, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RunKey), args.Error(1)
}

func (m *MockPostingRunRepository) SaveRun(ctx context.Context, run domain.PostingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockPostingRunRepository) MarkRunVoided(ctx context.Context, runID, reversalRunID, reason string, voidedAt time.Time) error {
	args := m.Called(ctx, runID, reversalRunID, reason, voidedAt)
	return args.Error(0)
}

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepositoryFacade = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) FindEntryByLineToken(ctx context.Context, docType domain.DocType, docID, lineToken string) (*domain.AccountingEntry, error) {
	args := m.Called(ctx, docType, docID, lineToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntriesByDocument(ctx context.Context, docType domain.DocType, docID string) ([]domain.AccountingEntry, error) {
	args := m.Called(ctx, docType, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntriesByRun(ctx context.Context, postingRunID string) ([]domain.AccountingEntry, error) {
	args := m.Called(ctx, postingRunID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingEntry), args.Error(1)
}

func (m *MockEntryRepository) HasEntriesForRun(ctx context.Context, postingRunID string) (bool, error) {
	args := m.Called(ctx, postingRunID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.AccountingEntry, *string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		next = &tokenVal
	}
	return args.Get(0).([]domain.AccountingEntry), next, args.Error(2)
}

func (m *MockEntryRepository) ListDocumentRefs(ctx context.Context, filter domain.BatchFilter, limit int) ([]domain.DocumentRef, error) {
	args := m.Called(ctx, filter, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentRef), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesWithoutLegalEntity(ctx context.Context, limit int) ([]domain.AccountingEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntriesWithoutRun(ctx context.Context, docTypes []domain.DocType, limit int) ([]domain.AccountingEntry, error) {
	args := m.Called(ctx, docTypes, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingEntry), args.Error(1)
}

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.AccountingEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) PatchEntryLinks(ctx context.Context, entryID string, legalEntityID, postingRunID *string) error {
	args := m.Called(ctx, entryID, legalEntityID, postingRunID)
	return args.Error(0)
}
