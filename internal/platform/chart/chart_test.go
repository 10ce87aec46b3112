package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
)

func TestDefault(t *testing.T) {
	chart, err := Default()
	require.NoError(t, err)

	for _, code := range []string{"41.01", "51.00", "57.03", "62.01", "90.01", "99.01"} {
		assert.True(t, chart.Contains(code), code)
	}
	assert.False(t, chart.Contains("00.00"))

	acc, ok := chart.Account("60.01")
	require.True(t, ok)
	assert.Equal(t, domain.Liability, acc.Type)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
accounts:
  - code: " 01.01 "
    name: Fixed assets
    type: ASSET
`), 0o600))

	chart, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"01.01"}, chart.Codes())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty", "accounts: []", "has no accounts"},
		{"missing code", "accounts: [{name: x, type: ASSET}]", "account #1 has no code"},
		{"duplicate", "accounts: [{code: '1', type: ASSET}, {code: '1', type: EXPENSE}]", "duplicate account code 1"},
		{"bad type", "accounts: [{code: '1', type: INCOME}]", `unknown type "INCOME"`},
		{"malformed", "accounts: {", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read chart of accounts")
}
