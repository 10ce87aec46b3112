package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	"github.com/SscSPs/posting_ledger/internal/utils"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeBalanceTable prints the totals of a report. Totals are sums of amountBase, so they
// are rounded to the base currency's precision whatever the entry currency.
func writeBalanceTable(w io.Writer, report domain.BalanceReport, baseCurrency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "CURRENCY\tDEBIT (%[1]s)\tCREDIT (%[1]s)\tDIFFERENCE (%[1]s)\tBALANCED\n", baseCurrency)
	for _, c := range report.Currencies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
			c.Currency,
			utils.FormatWithCurrencyPrecision(c.TotalDebit, baseCurrency),
			utils.FormatWithCurrencyPrecision(c.TotalCredit, baseCurrency),
			utils.FormatWithCurrencyPrecision(c.Difference, baseCurrency),
			c.IsBalanced,
		)
	}
	return tw.Flush()
}
