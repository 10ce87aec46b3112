package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/posting_ledger/internal/models"
	"github.com/SscSPs/posting_ledger/internal/utils/mapping"
	"github.com/SscSPs/posting_ledger/internal/utils/pagination"
)

const entryColumns = `id, doc_type, doc_id, source_doc_type, source_doc_id, line_number, posting_date,
	debit_account, credit_account, amount, currency, amount_base,
	country_id, brand_id, legal_entity_id, marketplace_id, warehouse_id,
	description, source, line_token, reversal_of_entry_id, reversal_of_run_id, posting_run_id, created_at`

type PgxEntryRepository struct {
	BaseRepository
}

func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (models.AccountingEntry, error) {
	var m models.AccountingEntry
	err := row.Scan(
		&m.ID,
		&m.DocType,
		&m.DocID,
		&m.SourceDocType,
		&m.SourceDocID,
		&m.LineNumber,
		&m.PostingDate,
		&m.DebitAccount,
		&m.CreditAccount,
		&m.Amount,
		&m.Currency,
		&m.AmountBase,
		&m.CountryID,
		&m.BrandID,
		&m.LegalEntityID,
		&m.MarketplaceID,
		&m.WarehouseID,
		&m.Description,
		&m.Source,
		&m.LineToken,
		&m.ReversalOfEntryID,
		&m.ReversalOfRunID,
		&m.PostingRunID,
		&m.CreatedAt,
	)
	return m, err
}

func (r *PgxEntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.AccountingEntry, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.AccountingEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accounting entry: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mapping.ToDomainEntries(entries), nil
}

// SaveEntry inserts an entry. A duplicate line token, or a line number already used in the
// run, surfaces as *apperrors.ConflictError.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.AccountingEntry) error {
	m := mapping.ToModelEntry(entry)
	query := `
		INSERT INTO accounting_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	_, err := r.execIsolated(ctx, query,
		m.ID,
		m.DocType,
		m.DocID,
		m.SourceDocType,
		m.SourceDocID,
		m.LineNumber,
		m.PostingDate,
		m.DebitAccount,
		m.CreditAccount,
		m.Amount,
		m.Currency,
		m.AmountBase,
		m.CountryID,
		m.BrandID,
		m.LegalEntityID,
		m.MarketplaceID,
		m.WarehouseID,
		m.Description,
		m.Source,
		m.LineToken,
		m.ReversalOfEntryID,
		m.ReversalOfRunID,
		m.PostingRunID,
		m.CreatedAt,
	)
	if err != nil {
		if apperrors.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to save accounting entry %s: %w", m.ID, err)
	}
	return nil
}

// PatchEntryLinks backfills a run only onto an entry without one. Taking a line number
// already used in that run surfaces as *apperrors.ConflictError.
func (r *PgxEntryRepository) PatchEntryLinks(ctx context.Context, entryID string, legalEntityID, postingRunID *string) error {
	query := `
		UPDATE accounting_entries
		SET legal_entity_id = COALESCE($2, legal_entity_id),
		    posting_run_id  = COALESCE(posting_run_id, $3)
		WHERE id = $1;
	`
	tag, err := r.execIsolated(ctx, query, entryID, legalEntityID, postingRunID)
	if err != nil {
		if apperrors.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to patch accounting entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: accounting entry %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}

func (r *PgxEntryRepository) FindEntryByLineToken(ctx context.Context, docType domain.DocType, docID, lineToken string) (*domain.AccountingEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM accounting_entries WHERE doc_type = $1 AND doc_id = $2 AND line_token = $3;`
	m, err := scanEntry(r.db(ctx).QueryRow(ctx, query, docType, docID, lineToken))
	if err != nil {
		return nil, mapReadError(err, "failed to find entry %s:%s/%s", docType, docID, lineToken)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

func (r *PgxEntryRepository) FindEntriesByDocument(ctx context.Context, docType domain.DocType, docID string) ([]domain.AccountingEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM accounting_entries
		WHERE doc_type = $1 AND doc_id = $2
		ORDER BY line_number, created_at, id;
	`
	entries, err := r.queryEntries(ctx, query, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of %s:%s: %w", docType, docID, err)
	}
	return entries, nil
}

func (r *PgxEntryRepository) FindEntriesByRun(ctx context.Context, postingRunID string) ([]domain.AccountingEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM accounting_entries
		WHERE posting_run_id = $1
		ORDER BY line_number, created_at, id;
	`
	entries, err := r.queryEntries(ctx, query, postingRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries of run %s: %w", postingRunID, err)
	}
	return entries, nil
}

func (r *PgxEntryRepository) HasEntriesForRun(ctx context.Context, postingRunID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounting_entries WHERE posting_run_id = $1);`, postingRunID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check entries of run %s: %w", postingRunID, err)
	}
	return exists, nil
}

// ListEntries pages entries by (posting_date, created_at, id) descending, fetching one
// extra row to decide whether a next page exists.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]domain.AccountingEntry, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultEntryListLimit
	}

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.FromDate != nil {
		add("posting_date >= $%d", *filter.FromDate)
	}
	if filter.ToDate != nil {
		add("posting_date <= $%d", *filter.ToDate)
	}
	if filter.DebitAccount != "" {
		add("debit_account = $%d", filter.DebitAccount)
	}
	if filter.CreditAccount != "" {
		add("credit_account = $%d", filter.CreditAccount)
	}
	if filter.DocType != "" {
		add("doc_type = $%d", filter.DocType)
	}
	if filter.PostingRunID != "" {
		add("posting_run_id = $%d", filter.PostingRunID)
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeEntryCursor(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error())
		}
		args = append(args, cursor.PostingDate, cursor.CreatedAt, cursor.ID)
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(posting_date, created_at, id) < ($%d, $%d, $%d)", n-2, n-1, n))
	}

	query := `SELECT ` + entryColumns + ` FROM accounting_entries`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY posting_date DESC, created_at DESC, id DESC LIMIT $%d;`, len(args))

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounting entries: %w", err)
	}
	if len(entries) <= limit {
		return entries, nil, nil
	}

	page := entries[:limit]
	last := page[limit-1]
	next := pagination.EncodeEntryCursor(pagination.EntryCursor{PostingDate: last.PostingDate, CreatedAt: last.CreatedAt, ID: last.ID})
	return page, &next, nil
}

func (r *PgxEntryRepository) ListDocumentRefs(ctx context.Context, filter domain.BatchFilter, limit int) ([]domain.DocumentRef, error) {
	query := `
		SELECT DISTINCT doc_type, doc_id
		FROM accounting_entries
		WHERE ($1::timestamptz IS NULL OR posting_date >= $1)
		  AND ($2::timestamptz IS NULL OR posting_date <= $2)
		  AND (cardinality($3::text[]) = 0 OR doc_type = ANY($3))
		ORDER BY doc_type, doc_id
		LIMIT $4;
	`
	docTypes := make([]string, len(filter.DocTypes))
	for i, dt := range filter.DocTypes {
		docTypes[i] = string(dt)
	}
	rows, err := r.db(ctx).Query(ctx, query, filter.From, filter.To, docTypes, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents with entries: %w", err)
	}
	defer rows.Close()

	refs := []domain.DocumentRef{}
	for rows.Next() {
		var ref domain.DocumentRef
		if err := rows.Scan(&ref.DocType, &ref.DocID); err != nil {
			return nil, fmt.Errorf("failed to scan document ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *PgxEntryRepository) ListEntriesWithoutLegalEntity(ctx context.Context, limit int) ([]domain.AccountingEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM accounting_entries
		WHERE legal_entity_id = ''
		ORDER BY created_at, id
		LIMIT $1;
	`
	entries, err := r.queryEntries(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries without legal entity: %w", err)
	}
	return entries, nil
}

func (r *PgxEntryRepository) ListEntriesWithoutRun(ctx context.Context, docTypes []domain.DocType, limit int) ([]domain.AccountingEntry, error) {
	types := make([]string, len(docTypes))
	for i, dt := range docTypes {
		types[i] = string(dt)
	}
	query := `
		SELECT ` + entryColumns + `
		FROM accounting_entries
		WHERE posting_run_id IS NULL AND doc_type = ANY($1)
		ORDER BY created_at, id
		LIMIT $2;
	`
	entries, err := r.queryEntries(ctx, query, types, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries without posting run: %w", err)
	}
	return entries, nil
}
