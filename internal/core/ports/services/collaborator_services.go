package services

import (
	"context"
	"time"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ScopeResolver determines the scope an entry is filed under.
type ScopeResolver interface {
	// Resolve returns a complete scope or an error wrapping apperrors.ErrScopeResolution.
	Resolve(ctx context.Context, req domain.ScopeRequest) (domain.Scope, error)
}

// CurrencyConverter converts amounts into the base currency.
type CurrencyConverter interface {
	// ConvertToBase returns amount expressed in the base currency as of date.
	// Returns *apperrors.RateNotFoundError when a non-base currency has no rate on or before date.
	ConvertToBase(ctx context.Context, amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error)

	// BaseCurrency returns the ISO code of the base currency.
	BaseCurrency() string
}

// DocumentPredicate reports whether a business document with the given id exists.
type DocumentPredicate func(ctx context.Context, docID string) (bool, error)

// DocumentExistenceChecker maps doc types to existence predicates.
type DocumentExistenceChecker interface {
	// CheckerFor returns the predicate of docType. ok is false when the type has none registered.
	CheckerFor(docType domain.DocType) (predicate DocumentPredicate, ok bool)
}
