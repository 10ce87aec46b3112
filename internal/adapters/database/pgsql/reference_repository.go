package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
)

// PgxReferenceRepository reads the reference data the ledger resolves against:
// the brand+country map, registered document scopes, currency rates and business tables.
type PgxReferenceRepository struct {
	BaseRepository
}

func newPgxReferenceRepository(pool *pgxpool.Pool) *PgxReferenceRepository {
	return &PgxReferenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.BrandCountryReader  = (*PgxReferenceRepository)(nil)
	_ portsrepo.DocumentScopeReader = (*PgxReferenceRepository)(nil)
	_ portsrepo.CurrencyRateReader  = (*PgxReferenceRepository)(nil)
	_ portsrepo.DocumentTableReader = (*PgxReferenceRepository)(nil)
)

func (r *PgxReferenceRepository) FindLegalEntity(ctx context.Context, brandID, countryID string) (string, error) {
	var legalEntityID string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT legal_entity_id FROM brand_countries WHERE brand_id = $1 AND country_id = $2;`,
		brandID, countryID,
	).Scan(&legalEntityID)
	if err != nil {
		return "", mapReadError(err, "failed to find legal entity of (%s, %s)", brandID, countryID)
	}
	return legalEntityID, nil
}

// FindCanonicalPair returns the first brand+country pair of the legal entity in key order.
func (r *PgxReferenceRepository) FindCanonicalPair(ctx context.Context, legalEntityID string) (*domain.BrandCountry, error) {
	query := `
		SELECT brand_id, country_id, legal_entity_id
		FROM brand_countries
		WHERE legal_entity_id = $1
		ORDER BY brand_id, country_id
		LIMIT 1;
	`
	var bc domain.BrandCountry
	err := r.db(ctx).QueryRow(ctx, query, legalEntityID).Scan(&bc.BrandID, &bc.CountryID, &bc.LegalEntityID)
	if err != nil {
		return nil, mapReadError(err, "failed to find brand+country of legal entity %s", legalEntityID)
	}
	return &bc, nil
}

func (r *PgxReferenceRepository) FindDocumentScope(ctx context.Context, doc domain.DocumentRef) (*domain.Scope, error) {
	query := `
		SELECT country_id, brand_id, legal_entity_id, marketplace_id, warehouse_id
		FROM document_scopes
		WHERE doc_type = $1 AND doc_id = $2;
	`
	var (
		scope                             domain.Scope
		countryID, brandID, legalEntityID *string
	)
	err := r.db(ctx).QueryRow(ctx, query, doc.DocType, doc.DocID).Scan(
		&countryID, &brandID, &legalEntityID, &scope.MarketplaceID, &scope.WarehouseID,
	)
	if err != nil {
		return nil, mapReadError(err, "failed to find scope of %s", doc)
	}
	scope.CountryID = deref(countryID)
	scope.BrandID = deref(brandID)
	scope.LegalEntityID = deref(legalEntityID)
	return &scope, nil
}

// FindEffectiveRate returns the latest rate dated on or before the given day.
func (r *PgxReferenceRepository) FindEffectiveRate(ctx context.Context, currency string, on time.Time) (decimal.Decimal, error) {
	query := `
		SELECT rate
		FROM currency_rates
		WHERE currency_code = $1 AND rate_date <= $2
		ORDER BY rate_date DESC
		LIMIT 1;
	`
	var rate decimal.Decimal
	if err := r.db(ctx).QueryRow(ctx, query, currency, on).Scan(&rate); err != nil {
		return decimal.Zero, mapReadError(err, "failed to find rate of %s", currency)
	}
	return rate, nil
}

// DocumentExists looks up a business table by primary key "id". The table name comes
// from configuration and may be schema-qualified.
func (r *PgxReferenceRepository) DocumentExists(ctx context.Context, table, docID string) (bool, error) {
	ident := pgx.Identifier(strings.Split(table, "."))
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id::text = $1);`, ident.Sanitize())

	var exists bool
	if err := r.db(ctx).QueryRow(ctx, query, docID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s in %s: %w", docID, table, err)
	}
	return exists, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
