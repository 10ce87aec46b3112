// Package chart loads the chart of accounts entries are validated against.
package chart

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

//go:embed default_chart.yaml
var defaultChart []byte

type chartFile struct {
	Accounts []domain.Account `yaml:"accounts"`
}

var validTypes = map[domain.AccountType]struct{}{
	domain.Asset: {}, domain.Liability: {}, domain.Equity: {}, domain.Revenue: {}, domain.Expense: {},
}

// Default returns the embedded chart.
func Default() (*domain.ChartOfAccounts, error) {
	return Parse(defaultChart)
}

// Load reads the chart at path, or the embedded chart when path is empty.
func Load(path string) (*domain.ChartOfAccounts, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart of accounts %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML chart. Codes must be unique and types known.
func Parse(data []byte) (*domain.ChartOfAccounts, error) {
	var f chartFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse chart of accounts: %w", err)
	}
	if len(f.Accounts) == 0 {
		return nil, fmt.Errorf("chart of accounts has no accounts")
	}

	seen := make(map[string]struct{}, len(f.Accounts))
	for i, a := range f.Accounts {
		a.Code = strings.TrimSpace(a.Code)
		if a.Code == "" {
			return nil, fmt.Errorf("account #%d has no code", i+1)
		}
		if _, dup := seen[a.Code]; dup {
			return nil, fmt.Errorf("duplicate account code %s", a.Code)
		}
		if _, ok := validTypes[a.Type]; !ok {
			return nil, fmt.Errorf("account %s has unknown type %q", a.Code, a.Type)
		}
		seen[a.Code] = struct{}{}
		f.Accounts[i] = a
	}
	return domain.NewChartOfAccounts(f.Accounts), nil
}
