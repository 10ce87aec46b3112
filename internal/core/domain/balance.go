package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/posting_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TopAccountsLimit bounds the diagnostic account lists of a balance report.
const TopAccountsLimit = 10

// AccountAmount is an account's contribution to one side of a balance.
type AccountAmount struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// CurrencyBalance holds the debit and credit totals of one currency.
type CurrencyBalance struct {
	Currency          string          `json:"currency"`
	TotalDebit        decimal.Decimal `json:"totalDebit"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	Difference        decimal.Decimal `json:"difference"`
	IsBalanced        bool            `json:"isBalanced"`
	TopDebitAccounts  []AccountAmount `json:"topDebitAccounts"`
	TopCreditAccounts []AccountAmount `json:"topCreditAccounts"`
}

// BalanceReport is the per-currency balance of a set of entries.
type BalanceReport struct {
	Currencies []CurrencyBalance `json:"currencies"`
	IsBalanced bool              `json:"isBalanced"`
}

// Unbalanced returns the first currency whose totals differ, if any.
func (b BalanceReport) Unbalanced() (CurrencyBalance, bool) {
	for _, c := range b.Currencies {
		if !c.IsBalanced {
			return c, true
		}
	}
	return CurrencyBalance{}, false
}

// ComputeBalance groups entries by currency and sums amountBase into debit totals
// keyed by debit account and credit totals keyed by credit account.
// An empty entry set is balanced.
func ComputeBalance(entries []AccountingEntry) BalanceReport {
	type sides struct {
		debit  map[string]decimal.Decimal
		credit map[string]decimal.Decimal
	}
	byCurrency := make(map[string]*sides)
	for _, e := range entries {
		s, ok := byCurrency[e.Currency]
		if !ok {
			s = &sides{debit: map[string]decimal.Decimal{}, credit: map[string]decimal.Decimal{}}
			byCurrency[e.Currency] = s
		}
		s.debit[e.DebitAccount] = s.debit[e.DebitAccount].Add(e.AmountBase)
		s.credit[e.CreditAccount] = s.credit[e.CreditAccount].Add(e.AmountBase)
	}

	report := BalanceReport{IsBalanced: true, Currencies: make([]CurrencyBalance, 0, len(byCurrency))}
	for currency, s := range byCurrency {
		debit := sum(s.debit)
		credit := sum(s.credit)
		cb := CurrencyBalance{
			Currency:          currency,
			TotalDebit:        debit,
			TotalCredit:       credit,
			Difference:        debit.Sub(credit),
			IsBalanced:        debit.Equal(credit),
			TopDebitAccounts:  topAccounts(s.debit),
			TopCreditAccounts: topAccounts(s.credit),
		}
		if !cb.IsBalanced {
			report.IsBalanced = false
		}
		report.Currencies = append(report.Currencies, cb)
	}
	sort.Slice(report.Currencies, func(i, j int) bool {
		return report.Currencies[i].Currency < report.Currencies[j].Currency
	})
	return report
}

func sum(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

func topAccounts(m map[string]decimal.Decimal) []AccountAmount {
	out := make([]AccountAmount, 0, len(m))
	for account, amount := range m {
		out = append(out, AccountAmount{Account: account, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Account < out[j].Account
	})
	if len(out) > TopAccountsLimit {
		out = out[:TopAccountsLimit]
	}
	return out
}

// BalanceViolationError is raised when entries are structurally invalid or do not balance.
// It is never auto-corrected.
type BalanceViolationError struct {
	Doc          DocumentRef
	PostingRunID *string
	Reason       string
	Balance      BalanceReport
}

func (e *BalanceViolationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s for %s", e.Reason, e.Doc)
	if e.PostingRunID != nil {
		fmt.Fprintf(&b, " (run %s)", *e.PostingRunID)
	}
	for _, c := range e.Balance.Currencies {
		if c.IsBalanced {
			continue
		}
		fmt.Fprintf(&b, "; %s debit=%s credit=%s diff=%s", c.Currency, c.TotalDebit, c.TotalCredit, c.Difference)
	}
	return b.String()
}

func (e *BalanceViolationError) Is(target error) bool {
	return target == apperrors.ErrBalanceViolation
}

// AssertInvariants checks the structural double-entry rules of every entry.
func AssertInvariants(doc DocumentRef, entries []AccountingEntry) error {
	for _, e := range entries {
		if strings.TrimSpace(e.DebitAccount) == "" || strings.TrimSpace(e.CreditAccount) == "" {
			return &BalanceViolationError{
				Doc:    doc,
				Reason: fmt.Sprintf("entry %s is missing debit/credit account", e.ID),
			}
		}
		if !e.AmountBase.IsPositive() {
			return &BalanceViolationError{
				Doc:    doc,
				Reason: fmt.Sprintf("entry %s amountBase must be > 0, got %s", e.ID, e.AmountBase),
			}
		}
	}
	return nil
}

// BatchFilter selects the documents swept by a batch validation.
type BatchFilter struct {
	From     *time.Time
	To       *time.Time
	DocTypes []DocType
}

// BatchDocumentLimit caps the distinct documents scanned by one batch validation.
const BatchDocumentLimit = 10_000

// BatchProblem is one document that failed batch validation.
type BatchProblem struct {
	Doc     DocumentRef `json:"doc"`
	Message string      `json:"message"`
}

// BatchReport summarises a batch validation sweep.
type BatchReport struct {
	CheckedDocuments    int            `json:"checkedDocuments"`
	UnbalancedDocuments int            `json:"unbalancedDocuments"`
	Problems            []BatchProblem `json:"problems"`
	// Truncated is set when more documents matched than one sweep checks.
	Truncated           bool           `json:"truncated"`
}

// IntegrityReport lists posting integrity issues found by a sweep.
type IntegrityReport struct {
	Issues []string `json:"issues"`
}

// OK reports whether the sweep found nothing.
func (r IntegrityReport) OK() bool {
	return len(r.Issues) == 0
}
