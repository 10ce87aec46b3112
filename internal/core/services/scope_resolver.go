package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

// brandCountryScopeResolver resolves scope from explicit overrides, the brand+country
// legal entity map and the scopes business services register for their documents.
type brandCountryScopeResolver struct {
	brandCountries portsrepo.BrandCountryReader
	docScopes      portsrepo.DocumentScopeReader
}

// NewScopeResolver creates the brand+country backed ScopeResolver.
func NewScopeResolver(brandCountries portsrepo.BrandCountryReader, docScopes portsrepo.DocumentScopeReader) portssvc.ScopeResolver {
	return &brandCountryScopeResolver{brandCountries: brandCountries, docScopes: docScopes}
}

var _ portssvc.ScopeResolver = (*brandCountryScopeResolver)(nil)

func (r *brandCountryScopeResolver) Resolve(ctx context.Context, req domain.ScopeRequest) (domain.Scope, error) {
	ex := req.Explicit

	// A bare legal entity (treasury postings) gets its canonical brand+country pair.
	if ex.LegalEntityID != "" && (ex.CountryID == "" || ex.BrandID == "") {
		pair, err := r.brandCountries.FindCanonicalPair(ctx, ex.LegalEntityID)
		switch {
		case err == nil:
			return domain.Scope{
				CountryID:     pair.CountryID,
				BrandID:       pair.BrandID,
				LegalEntityID: ex.LegalEntityID,
				MarketplaceID: ex.MarketplaceID,
				WarehouseID:   ex.WarehouseID,
			}, nil
		case !errors.Is(err, apperrors.ErrNotFound):
			return domain.Scope{}, fmt.Errorf("failed to find brand+country of legal entity %s: %w", ex.LegalEntityID, err)
		}
	}

	if ex.CountryID != "" && ex.BrandID != "" {
		legalEntityID, err := r.legalEntityFor(ctx, ex.LegalEntityID, ex.BrandID, ex.CountryID)
		if err != nil {
			return domain.Scope{}, err
		}
		ex.LegalEntityID = legalEntityID
		return ex, nil
	}

	docScope, err := r.documentScope(ctx, req)
	if err != nil {
		return domain.Scope{}, err
	}
	if docScope == nil || docScope.BrandID == "" || docScope.CountryID == "" {
		return domain.Scope{}, fmt.Errorf("%w: cannot resolve scope for %s, provide explicit countryId+brandId", apperrors.ErrScopeResolution, req.Doc)
	}

	preferred := ex.LegalEntityID
	if preferred == "" {
		preferred = docScope.LegalEntityID
	}
	legalEntityID, err := r.legalEntityFor(ctx, preferred, docScope.BrandID, docScope.CountryID)
	if err != nil {
		return domain.Scope{}, err
	}
	scope := domain.Scope{
		CountryID:     docScope.CountryID,
		BrandID:       docScope.BrandID,
		LegalEntityID: legalEntityID,
		MarketplaceID: docScope.MarketplaceID,
		WarehouseID:   docScope.WarehouseID,
	}
	if ex.MarketplaceID != nil {
		scope.MarketplaceID = ex.MarketplaceID
	}
	if ex.WarehouseID != nil {
		scope.WarehouseID = ex.WarehouseID
	}
	return scope, nil
}

func (r *brandCountryScopeResolver) legalEntityFor(ctx context.Context, preferred, brandID, countryID string) (string, error) {
	if preferred != "" {
		return preferred, nil
	}
	legalEntityID, err := r.brandCountries.FindLegalEntity(ctx, brandID, countryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: no legal entity configured for brand+country (%s, %s)", apperrors.ErrScopeResolution, brandID, countryID)
		}
		return "", fmt.Errorf("failed to find legal entity for brand+country (%s, %s): %w", brandID, countryID, err)
	}
	return legalEntityID, nil
}

// documentScope looks up the registered scope of the document, then of its source document.
func (r *brandCountryScopeResolver) documentScope(ctx context.Context, req domain.ScopeRequest) (*domain.Scope, error) {
	refs := []domain.DocumentRef{req.Doc}
	if req.SourceDoc != nil && *req.SourceDoc != req.Doc {
		refs = append(refs, *req.SourceDoc)
	}
	for _, ref := range refs {
		scope, err := r.docScopes.FindDocumentScope(ctx, ref)
		if err == nil {
			return scope, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to find scope of %s: %w", ref, err)
		}
	}
	return nil, nil
}
