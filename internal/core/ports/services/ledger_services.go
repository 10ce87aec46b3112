package services

import (
	"context"
	"time"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryInput is the request to record one ledger line.
// Empty SourceDocType/SourceDocID default to the owning document.
// Scope fields left empty are resolved by the ScopeResolver; explicit CountryID+BrandID always win.
type CreateEntryInput struct {
	DocType       domain.DocType `validate:"required"`
	DocID         string         `validate:"required"`
	SourceDocType domain.DocType `validate:"required_with=SourceDocID"`
	SourceDocID   string         `validate:"required_with=SourceDocType"`
	LegalEntityID string
	CountryID     string
	BrandID       string
	MarketplaceID *string
	WarehouseID   *string
	LineNumber    int             `validate:"gte=0"`
	PostingDate   time.Time       `validate:"required"`
	DebitAccount  string          `validate:"required,nefield=CreditAccount"`
	CreditAccount string          `validate:"required"`
	Amount        decimal.Decimal `validate:"positive_decimal"`
	Currency      string          `validate:"required,iso_currency"`
	Description   string
	Source        string
	LineToken     *string
	PostingRunID  *string
}

// LedgerWriterSvc defines write operations for ledger entries
type LedgerWriterSvc interface {
	// CreateEntry validates and records one entry, or returns the existing entry for a known line token.
	CreateEntry(ctx context.Context, input CreateEntryInput) (*domain.AccountingEntry, error)
}

// LedgerReaderSvc defines read operations for ledger entries
type LedgerReaderSvc interface {
	// ListByDocument retrieves the entries of a document ordered by line number.
	ListByDocument(ctx context.Context, docType domain.DocType, docID string) ([]domain.AccountingEntry, error)

	// List retrieves a page of entries matching the filter.
	List(ctx context.Context, filter domain.EntryFilter) (*domain.EntryPage, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
