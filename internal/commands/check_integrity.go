package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
)

var errIntegrityIssues = errors.New("integrity issues found")

func newCheckIntegrityCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-integrity",
		Short: "Report posting integrity issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				report, err := svc.Integrity.CheckIntegrity(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if opts.output == outputJSON {
					if err := writeJSON(out, report); err != nil {
						return err
					}
				} else if report.OK() {
					fmt.Fprintln(out, "No integrity issues")
				} else {
					for _, issue := range report.Issues {
						fmt.Fprintln(out, issue)
					}
				}

				if !report.OK() {
					return errIntegrityIssues
				}
				return nil
			})
		},
	}
}
