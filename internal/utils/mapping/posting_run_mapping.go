package mapping

import (
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	"github.com/SscSPs/posting_ledger/internal/models"
)

// ToModelPostingRun converts a domain PostingRun to a model PostingRun
func ToModelPostingRun(d domain.PostingRun) models.PostingRun {
	return models.PostingRun{
		ID:                d.ID,
		LegalEntityID:     d.LegalEntityID,
		DocType:           string(d.DocType),
		DocID:             d.DocID,
		Version:           d.Version,
		Status:            string(d.Status),
		PostedAt:          d.PostedAt,
		VoidedAt:          d.VoidedAt,
		VoidReason:        d.VoidReason,
		ReversalRunID:     d.ReversalRunID,
		RepostedFromRunID: d.RepostedFromRunID,
		ReversalOfRunID:   d.ReversalOfRunID,
	}
}

// ToDomainPostingRun converts a model PostingRun to a domain PostingRun
func ToDomainPostingRun(m models.PostingRun) domain.PostingRun {
	return domain.PostingRun{
		ID:                m.ID,
		LegalEntityID:     m.LegalEntityID,
		DocType:           domain.DocType(m.DocType),
		DocID:             m.DocID,
		Version:           m.Version,
		Status:            domain.PostingRunStatus(m.Status),
		PostedAt:          m.PostedAt,
		VoidedAt:          m.VoidedAt,
		VoidReason:        m.VoidReason,
		ReversalRunID:     m.ReversalRunID,
		RepostedFromRunID: m.RepostedFromRunID,
		ReversalOfRunID:   m.ReversalOfRunID,
	}
}
