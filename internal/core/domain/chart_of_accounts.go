package domain

import "sort"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account is one line of the static chart of accounts.
type Account struct {
	Code string      `json:"code" yaml:"code"`
	Name string      `json:"name" yaml:"name"`
	Type AccountType `json:"type" yaml:"type"`
}

// ChartOfAccounts is the static set of account codes entries may reference.
type ChartOfAccounts struct {
	accounts map[string]Account
}

// NewChartOfAccounts indexes accounts by code. Later duplicates replace earlier ones.
func NewChartOfAccounts(accounts []Account) *ChartOfAccounts {
	m := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		m[a.Code] = a
	}
	return &ChartOfAccounts{accounts: m}
}

// Contains reports whether code is a known account.
func (c *ChartOfAccounts) Contains(code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.accounts[code]
	return ok
}

// Account looks up an account by code.
func (c *ChartOfAccounts) Account(code string) (Account, bool) {
	if c == nil {
		return Account{}, false
	}
	a, ok := c.accounts[code]
	return a, ok
}

// Codes returns the sorted account codes.
func (c *ChartOfAccounts) Codes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.accounts))
	for code := range c.accounts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
