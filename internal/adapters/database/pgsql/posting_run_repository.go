package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/posting_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/posting_ledger/internal/models"
	"github.com/SscSPs/posting_ledger/internal/utils/mapping"
)

const runColumns = `id, legal_entity_id, doc_type, doc_id, version, status, posted_at,
	voided_at, void_reason, reversal_run_id, reposted_from_run_id, reversal_of_run_id`

type PgxPostingRunRepository struct {
	BaseRepository
}

func newPgxPostingRunRepository(pool *pgxpool.Pool) portsrepo.PostingRunRepositoryFacade {
	return &PgxPostingRunRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PostingRunRepositoryFacade = (*PgxPostingRunRepository)(nil)

func scanRun(row pgx.Row) (models.PostingRun, error) {
	var m models.PostingRun
	err := row.Scan(
		&m.ID,
		&m.LegalEntityID,
		&m.DocType,
		&m.DocID,
		&m.Version,
		&m.Status,
		&m.PostedAt,
		&m.VoidedAt,
		&m.VoidReason,
		&m.ReversalRunID,
		&m.RepostedFromRunID,
		&m.ReversalOfRunID,
	)
	return m, err
}

// SaveRun inserts a run. A taken (doc_type, doc_id, version) surfaces as *apperrors.ConflictError.
func (r *PgxPostingRunRepository) SaveRun(ctx context.Context, run domain.PostingRun) error {
	m := mapping.ToModelPostingRun(run)
	query := `
		INSERT INTO posting_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.execIsolated(ctx, query,
		m.ID,
		m.LegalEntityID,
		m.DocType,
		m.DocID,
		m.Version,
		m.Status,
		m.PostedAt,
		m.VoidedAt,
		m.VoidReason,
		m.ReversalRunID,
		m.RepostedFromRunID,
		m.ReversalOfRunID,
	)
	if err != nil {
		if apperrors.IsConflict(err) {
			return err
		}
		return fmt.Errorf("failed to save posting run %s: %w", m.ID, err)
	}
	return nil
}

// MarkRunVoided flips a POSTED run to VOIDED. The status predicate makes the update the
// claim between concurrent voiders: the loser matches no row and gets ErrConflict.
func (r *PgxPostingRunRepository) MarkRunVoided(ctx context.Context, runID, reversalRunID, reason string, voidedAt time.Time) error {
	query := `
		UPDATE posting_runs
		SET status = 'VOIDED', voided_at = $2, void_reason = $3, reversal_run_id = $4
		WHERE id = $1 AND status = 'POSTED';
	`
	tag, err := r.db(ctx).Exec(ctx, query, runID, voidedAt, reason, reversalRunID)
	if err != nil {
		return fmt.Errorf("failed to void posting run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var status string
	err = r.db(ctx).QueryRow(ctx, `SELECT status FROM posting_runs WHERE id = $1;`, runID).Scan(&status)
	if err != nil {
		return mapReadError(err, "failed to read status of posting run %s", runID)
	}
	return fmt.Errorf("%w: posting run %s is %s", apperrors.ErrConflict, runID, status)
}

func (r *PgxPostingRunRepository) FindRunByID(ctx context.Context, runID string) (*domain.PostingRun, error) {
	m, err := scanRun(r.db(ctx).QueryRow(ctx, `SELECT `+runColumns+` FROM posting_runs WHERE id = $1;`, runID))
	if err != nil {
		return nil, mapReadError(err, "failed to find posting run %s", runID)
	}
	run := mapping.ToDomainPostingRun(m)
	return &run, nil
}

// FindActiveRun returns the highest POSTED non-reversal run of the key.
func (r *PgxPostingRunRepository) FindActiveRun(ctx context.Context, key domain.RunKey) (*domain.PostingRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM posting_runs
		WHERE legal_entity_id = $1 AND doc_type = $2 AND doc_id = $3
		  AND status = 'POSTED' AND reversal_of_run_id IS NULL
		ORDER BY version DESC
		LIMIT 1;
	`
	m, err := scanRun(r.db(ctx).QueryRow(ctx, query, key.LegalEntityID, key.DocType, key.DocID))
	if err != nil {
		return nil, mapReadError(err, "failed to find active run for %s", key)
	}
	run := mapping.ToDomainPostingRun(m)
	return &run, nil
}

// MaxRunVersion is computed over the document across legal entities, matching the
// scope of the version uniqueness constraint.
func (r *PgxPostingRunRepository) MaxRunVersion(ctx context.Context, docType domain.DocType, docID string) (int, error) {
	var maxVersion int
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM posting_runs WHERE doc_type = $1 AND doc_id = $2;`,
		docType, docID,
	).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to read max run version of %s:%s: %w", docType, docID, err)
	}
	return maxVersion, nil
}

func (r *PgxPostingRunRepository) ListRunsByKey(ctx context.Context, key domain.RunKey) ([]domain.PostingRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM posting_runs
		WHERE legal_entity_id = $1 AND doc_type = $2 AND doc_id = $3
		ORDER BY version;
	`
	rows, err := r.db(ctx).Query(ctx, query, key.LegalEntityID, key.DocType, key.DocID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs of %s: %w", key, err)
	}
	defer rows.Close()

	runs := []domain.PostingRun{}
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting run: %w", err)
		}
		runs = append(runs, mapping.ToDomainPostingRun(m))
	}
	return runs, rows.Err()
}

func (r *PgxPostingRunRepository) FindKeysWithMultipleActiveRuns(ctx context.Context, limit int) ([]domain.RunKey, error) {
	query := `
		SELECT legal_entity_id, doc_type, doc_id
		FROM posting_runs
		WHERE status = 'POSTED' AND reversal_of_run_id IS NULL
		GROUP BY legal_entity_id, doc_type, doc_id
		HAVING COUNT(*) > 1
		ORDER BY legal_entity_id, doc_type, doc_id
		LIMIT $1;
	`
	rows, err := r.db(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find keys with multiple active runs: %w", err)
	}
	defer rows.Close()

	keys := []domain.RunKey{}
	for rows.Next() {
		var k domain.RunKey
		if err := rows.Scan(&k.LegalEntityID, &k.DocType, &k.DocID); err != nil {
			return nil, fmt.Errorf("failed to scan run key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
