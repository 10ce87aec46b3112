package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Default values for optional entry fields.
const (
	SourceAuto     = "auto"
	SourceReversal = "reversal"
)

// Provenance links a reversal entry back to the entry and run it mirrors.
type Provenance struct {
	ReversalOfEntryID string `json:"reversalOfEntryId"`
	ReversalOfRunID   string `json:"reversalOfRunId"`
}

// AccountingEntry is a single immutable double-entry fact: it debits one account and credits another.
type AccountingEntry struct {
	ID            string          `json:"id"`
	DocType       DocType         `json:"docType"`
	DocID         string          `json:"docId"`
	SourceDocType DocType         `json:"sourceDocType"`
	SourceDocID   string          `json:"sourceDocId"`
	LineNumber    int             `json:"lineNumber"`
	PostingDate   time.Time       `json:"postingDate"`
	DebitAccount  string          `json:"debitAccount"`
	CreditAccount string          `json:"creditAccount"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	AmountBase    decimal.Decimal `json:"amountBase"`
	Scope         Scope           `json:"scope"`
	Description   string          `json:"description"`
	Source        string          `json:"source"`
	LineToken     *string         `json:"lineToken,omitempty"`
	Provenance    *Provenance     `json:"provenance,omitempty"`
	PostingRunID  *string         `json:"postingRunId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Document returns the reference of the document owning the entry.
func (e AccountingEntry) Document() DocumentRef {
	return DocumentRef{DocType: e.DocType, DocID: e.DocID}
}

// EffectiveLineToken returns the caller token, or a token derived from the line number for untokened rows.
func (e AccountingEntry) EffectiveLineToken() string {
	if e.LineToken != nil && *e.LineToken != "" {
		return *e.LineToken
	}
	return fmt.Sprintf("line:%d", e.LineNumber)
}

// ReversalLineToken derives the deterministic token of the entry mirroring e inside a void of runID.
func (e AccountingEntry) ReversalLineToken(runID string) string {
	return fmt.Sprintf("reversal:%s:%s", runID, e.EffectiveLineToken())
}

// Reversal builds the mirror of e for the reversal run: debit and credit swapped,
// amounts, currency, scope and line number unchanged.
func (e AccountingEntry) Reversal(id, originalRunID, reversalRunID string, createdAt time.Time) AccountingEntry {
	token := e.ReversalLineToken(originalRunID)
	runID := reversalRunID
	return AccountingEntry{
		ID:            id,
		DocType:       e.DocType,
		DocID:         e.DocID,
		SourceDocType: e.SourceDocType,
		SourceDocID:   e.SourceDocID,
		LineNumber:    e.LineNumber,
		PostingDate:   e.PostingDate,
		DebitAccount:  e.CreditAccount,
		CreditAccount: e.DebitAccount,
		Amount:        e.Amount,
		Currency:      e.Currency,
		AmountBase:    e.AmountBase,
		Scope:         e.Scope,
		Description:   "REVERSAL of " + e.ID,
		Source:        SourceReversal,
		LineToken:     &token,
		Provenance: &Provenance{
			ReversalOfEntryID: e.ID,
			ReversalOfRunID:   originalRunID,
		},
		PostingRunID: &runID,
		CreatedAt:    createdAt,
	}
}

// EntryFilter narrows an entry listing. Zero values mean "no constraint".
type EntryFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	DebitAccount  string
	CreditAccount string
	DocType       DocType
	PostingRunID  string
	Limit         int
	NextToken     *string
}

// DefaultEntryListLimit caps an entry listing when the filter sets no limit.
const DefaultEntryListLimit = 500

// EntryPage is one page of a filtered entry listing.
type EntryPage struct {
	Entries   []AccountingEntry `json:"entries"`
	NextToken *string           `json:"nextToken,omitempty"`
}
