package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SscSPs/posting_ledger/pkg/database"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the ledger schema",
	}
	cmd.AddCommand(newMigrateUpCommand(opts))
	cmd.AddCommand(newMigrateDownCommand(opts))
	return cmd
}

func newMigrateUpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := database.MigrateUp(opts.cfg.DatabaseURL, opts.cfg.MigrationsPath)
			if err != nil {
				return err
			}
			return printMigrationStatus(cmd, opts, status)
		},
	}
}

func newMigrateDownCommand(opts *rootOptions) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := database.MigrateDown(opts.cfg.DatabaseURL, opts.cfg.MigrationsPath, steps)
			if err != nil {
				return err
			}
			return printMigrationStatus(cmd, opts, status)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func printMigrationStatus(cmd *cobra.Command, opts *rootOptions, status *database.MigrationStatus) error {
	if opts.output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), status)
	}
	if !status.Changed {
		fmt.Fprintf(cmd.OutOrStdout(), "No change, schema at version %d\n", status.Version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (dirty=%t)\n", status.Version, status.Dirty)
	return nil
}
