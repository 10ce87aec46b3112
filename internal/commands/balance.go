package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

func newBalanceCommand(opts *rootOptions) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "balance DOC_TYPE DOC_ID",
		Short: "Show the balance of one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType := domain.DocType(strings.ToUpper(args[0]))
			if !docType.IsValid() {
				return fmt.Errorf("unknown document type %q", args[0])
			}
			var run *string
			if runID != "" {
				run = &runID
			}
			return opts.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				return runBalance(cmd, opts, svc, docType, args[1], run)
			})
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "restrict to one posting run")
	return cmd
}

func runBalance(cmd *cobra.Command, opts *rootOptions, svc *portssvc.ServiceContainer, docType domain.DocType, docID string, runID *string) error {
	report, err := svc.Balance.ValidateDocument(cmd.Context(), docType, docID, runID)
	if report != nil {
		out := cmd.OutOrStdout()
		var werr error
		if opts.output == outputJSON {
			werr = writeJSON(out, report)
		} else {
			werr = writeBalanceTable(out, *report, opts.cfg.BaseCurrency)
		}
		if werr != nil {
			return werr
		}
	}
	return err
}
