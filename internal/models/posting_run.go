package models

import "time"

// PostingRun is the posting_runs row.
type PostingRun struct {
	ID                string     `json:"id"`
	LegalEntityID     string     `json:"legalEntityId"`
	DocType           string     `json:"docType"`
	DocID             string     `json:"docId"`
	Version           int        `json:"version"`
	Status            string     `json:"status"` // POSTED or VOIDED
	PostedAt          time.Time  `json:"postedAt"`
	VoidedAt          *time.Time `json:"voidedAt"`
	VoidReason        *string    `json:"voidReason"`
	ReversalRunID     *string    `json:"reversalRunId"`
	RepostedFromRunID *string    `json:"repostedFromRunId"`
	ReversalOfRunID   *string    `json:"reversalOfRunId"`
}
