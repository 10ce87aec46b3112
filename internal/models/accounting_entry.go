package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingEntry is the accounting_entries row. Nullable columns are pointers.
type AccountingEntry struct {
	ID                string          `json:"id"`
	DocType           string          `json:"docType"`
	DocID             string          `json:"docId"`
	SourceDocType     string          `json:"sourceDocType"`
	SourceDocID       string          `json:"sourceDocId"`
	LineNumber        int             `json:"lineNumber"`
	PostingDate       time.Time       `json:"postingDate"`
	DebitAccount      string          `json:"debitAccount"`
	CreditAccount     string          `json:"creditAccount"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	AmountBase        decimal.Decimal `json:"amountBase"`
	CountryID         string          `json:"countryId"`
	BrandID           string          `json:"brandId"`
	LegalEntityID     string          `json:"legalEntityId"`
	MarketplaceID     *string         `json:"marketplaceId"`
	WarehouseID       *string         `json:"warehouseId"`
	Description       string          `json:"description"`
	Source            string          `json:"source"`
	LineToken         *string         `json:"lineToken"`
	ReversalOfEntryID *string         `json:"reversalOfEntryId"` // set together with ReversalOfRunID
	ReversalOfRunID   *string         `json:"reversalOfRunId"`
	PostingRunID      *string         `json:"postingRunId"`
	CreatedAt         time.Time       `json:"createdAt"`
}
