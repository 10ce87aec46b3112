package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

const dateLayout = "2006-01-02"

var errUnbalancedDocuments = errors.New("unbalanced documents found")

func newValidateBatchCommand(opts *rootOptions) *cobra.Command {
	var (
		from     string
		to       string
		docTypes []string
	)

	cmd := &cobra.Command{
		Use:   "validate-batch",
		Short: "Check that every document in a period balances",
		Long: `Recompute the balance of every document with entries in the period.
The command fails when at least one document does not balance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseBatchFilter(from, to, docTypes)
			if err != nil {
				return err
			}
			return opts.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				return runValidateBatch(cmd, opts, svc, filter)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first posting date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last posting date, YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&docTypes, "doc-type", nil, "restrict to document types (repeatable)")

	return cmd
}

func parseBatchFilter(from, to string, docTypes []string) (domain.BatchFilter, error) {
	var filter domain.BatchFilter

	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		filter.From = &t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to %q: %w", to, err)
		}
		// Inclusive of the whole last day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("--to %s is before --from %s", to, from)
	}

	for _, raw := range docTypes {
		dt := domain.DocType(strings.ToUpper(strings.TrimSpace(raw)))
		if !dt.IsValid() {
			return filter, fmt.Errorf("unknown document type %q", raw)
		}
		filter.DocTypes = append(filter.DocTypes, dt)
	}
	return filter, nil
}

func runValidateBatch(cmd *cobra.Command, opts *rootOptions, svc *portssvc.ServiceContainer, filter domain.BatchFilter) error {
	report, err := svc.Balance.ValidateBatch(cmd.Context(), filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output == outputJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Checked %d documents, %d unbalanced\n", report.CheckedDocuments, report.UnbalancedDocuments)
		if report.Truncated {
			fmt.Fprintf(out, "Stopped after %d documents, narrow the period or doc types to check the rest\n", report.CheckedDocuments)
		}
		for _, p := range report.Problems {
			fmt.Fprintf(out, "  %s: %s\n", p.Doc, p.Message)
		}
	}

	if report.UnbalancedDocuments > 0 {
		return errUnbalancedDocuments
	}
	return nil
}
