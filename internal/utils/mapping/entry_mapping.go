package mapping

import (
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	"github.com/SscSPs/posting_ledger/internal/models"
)

// ToModelEntry converts a domain AccountingEntry to a model AccountingEntry
func ToModelEntry(d domain.AccountingEntry) models.AccountingEntry {
	m := models.AccountingEntry{
		ID:            d.ID,
		DocType:       string(d.DocType),
		DocID:         d.DocID,
		SourceDocType: string(d.SourceDocType),
		SourceDocID:   d.SourceDocID,
		LineNumber:    d.LineNumber,
		PostingDate:   d.PostingDate,
		DebitAccount:  d.DebitAccount,
		CreditAccount: d.CreditAccount,
		Amount:        d.Amount,
		Currency:      d.Currency,
		AmountBase:    d.AmountBase,
		CountryID:     d.Scope.CountryID,
		BrandID:       d.Scope.BrandID,
		LegalEntityID: d.Scope.LegalEntityID,
		MarketplaceID: d.Scope.MarketplaceID,
		WarehouseID:   d.Scope.WarehouseID,
		Description:   d.Description,
		Source:        d.Source,
		LineToken:     d.LineToken,
		PostingRunID:  d.PostingRunID,
		CreatedAt:     d.CreatedAt,
	}
	if d.Provenance != nil {
		m.ReversalOfEntryID = &d.Provenance.ReversalOfEntryID
		m.ReversalOfRunID = &d.Provenance.ReversalOfRunID
	}
	return m
}

// ToDomainEntry converts a model AccountingEntry to a domain AccountingEntry
func ToDomainEntry(m models.AccountingEntry) domain.AccountingEntry {
	d := domain.AccountingEntry{
		ID:            m.ID,
		DocType:       domain.DocType(m.DocType),
		DocID:         m.DocID,
		SourceDocType: domain.DocType(m.SourceDocType),
		SourceDocID:   m.SourceDocID,
		LineNumber:    m.LineNumber,
		PostingDate:   m.PostingDate,
		DebitAccount:  m.DebitAccount,
		CreditAccount: m.CreditAccount,
		Amount:        m.Amount,
		Currency:      m.Currency,
		AmountBase:    m.AmountBase,
		Scope: domain.Scope{
			CountryID:     m.CountryID,
			BrandID:       m.BrandID,
			LegalEntityID: m.LegalEntityID,
			MarketplaceID: m.MarketplaceID,
			WarehouseID:   m.WarehouseID,
		},
		Description:  m.Description,
		Source:       m.Source,
		LineToken:    m.LineToken,
		PostingRunID: m.PostingRunID,
		CreatedAt:    m.CreatedAt,
	}
	if m.ReversalOfEntryID != nil && m.ReversalOfRunID != nil {
		d.Provenance = &domain.Provenance{
			ReversalOfEntryID: *m.ReversalOfEntryID,
			ReversalOfRunID:   *m.ReversalOfRunID,
		}
	}
	return d
}

// ToDomainEntries converts a slice of model entries
func ToDomainEntries(ms []models.AccountingEntry) []domain.AccountingEntry {
	out := make([]domain.AccountingEntry, len(ms))
	for i, m := range ms {
		out[i] = ToDomainEntry(m)
	}
	return out
}
