package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BrandCountryReader defines read operations over the brand+country to legal entity map
type BrandCountryReader interface {
	// FindLegalEntity returns the legal entity booking a brand+country pair.
	// Returns apperrors.ErrNotFound when the pair is not mapped.
	FindLegalEntity(ctx context.Context, brandID, countryID string) (string, error)

	// FindCanonicalPair returns the first brand+country pair (by brand, then country) mapped to a legal entity.
	// Returns apperrors.ErrNotFound when the legal entity has no pairs.
	FindCanonicalPair(ctx context.Context, legalEntityID string) (*domain.BrandCountry, error)
}

// DocumentScopeReader exposes the scope business services registered for their documents
type DocumentScopeReader interface {
	// FindDocumentScope returns the registered scope of a document.
	// Returns apperrors.ErrNotFound when the document has none.
	FindDocumentScope(ctx context.Context, doc domain.DocumentRef) (*domain.Scope, error)
}

// CurrencyRateReader defines read operations for currency rates
type CurrencyRateReader interface {
	// FindEffectiveRate returns the rate-to-base of the latest rate dated on or before the given day.
	// Returns apperrors.ErrNotFound when no such rate exists.
	FindEffectiveRate(ctx context.Context, currency string, on time.Time) (decimal.Decimal, error)
}

// DocumentTableReader looks up business document tables by primary key
type DocumentTableReader interface {
	// DocumentExists reports whether a row with the given id exists in table.
	DocumentExists(ctx context.Context, table, docID string) (bool, error)
}
