package domain

import "time"

// PostingRunStatus indicates the lifecycle state of a posting run.
type PostingRunStatus string

const (
	RunPosted PostingRunStatus = "POSTED"
	RunVoided PostingRunStatus = "VOIDED"
)

// DefaultVoidReason is recorded when a run is voided without a reason.
const DefaultVoidReason = "void"

// RunKey identifies the document a posting run belongs to.
type RunKey struct {
	LegalEntityID string  `json:"legalEntityId"`
	DocType       DocType `json:"docType"`
	DocID         string  `json:"docId"`
}

func (k RunKey) String() string {
	return k.LegalEntityID + "/" + string(k.DocType) + ":" + k.DocID
}

// PostingRun is one versioned attempt to record all ledger entries for a document.
// A run is born POSTED and transitions once, terminally, to VOIDED.
type PostingRun struct {
	ID                string           `json:"id"`
	LegalEntityID     string           `json:"legalEntityId"`
	DocType           DocType          `json:"docType"`
	DocID             string           `json:"docId"`
	Version           int              `json:"version"`
	Status            PostingRunStatus `json:"status"`
	PostedAt          time.Time        `json:"postedAt"`
	VoidedAt          *time.Time       `json:"voidedAt,omitempty"`
	VoidReason        *string          `json:"voidReason,omitempty"`
	ReversalRunID     *string          `json:"reversalRunId,omitempty"`
	RepostedFromRunID *string          `json:"repostedFromRunId,omitempty"`
	ReversalOfRunID   *string          `json:"reversalOfRunId,omitempty"`
}

// Key returns the run's document key.
func (r PostingRun) Key() RunKey {
	return RunKey{LegalEntityID: r.LegalEntityID, DocType: r.DocType, DocID: r.DocID}
}

// IsReversal reports whether the run holds the mirror entries of a voided run.
func (r PostingRun) IsReversal() bool {
	return r.ReversalOfRunID != nil
}

// IsActive reports whether the run can receive postings and be voided.
func (r PostingRun) IsActive() bool {
	return r.Status == RunPosted && !r.IsReversal()
}

// VoidResult describes the outcome of voiding a run.
type VoidResult struct {
	OriginalRun     PostingRun  `json:"originalRun"`
	ReversalRun     *PostingRun `json:"reversalRun,omitempty"`
	ReversedEntries int         `json:"reversedEntries"`
	AlreadyVoided   bool        `json:"alreadyVoided"`
}

// ReversalRunID returns the id of the run holding the mirror entries, if any.
func (v VoidResult) ReversalRunID() string {
	if v.ReversalRun != nil {
		return v.ReversalRun.ID
	}
	if v.OriginalRun.ReversalRunID != nil {
		return *v.OriginalRun.ReversalRunID
	}
	return ""
}
