// Package commands implements the ledgerctl command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SscSPs/posting_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/posting_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/posting_ledger/internal/core/ports/services"
	"github.com/SscSPs/posting_ledger/internal/core/services"
	"github.com/SscSPs/posting_ledger/internal/platform/chart"
	"github.com/SscSPs/posting_ledger/internal/platform/config"
	"github.com/SscSPs/posting_ledger/internal/platform/logger"
	"github.com/SscSPs/posting_ledger/pkg/database"
)

var version = "dev"

const (
	outputText = "text"
	outputJSON = "json"
)

// servicesFactory builds the service container for a command and returns its cleanup.
type servicesFactory func(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error)

type rootOptions struct {
	output      string
	cfg         *config.Config
	loadConfig  func() (*config.Config, error)
	newServices servicesFactory
}

// NewRootCommand creates the root command wired to Postgres.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{loadConfig: config.LoadConfig, newServices: newPgxServices})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "Operate the posting ledger",
		Long:    "ledgerctl runs schema migrations and balance and integrity sweeps against the posting ledger.",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "output format: text or json")

	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newValidateBatchCommand(opts))
	rootCmd.AddCommand(newBalanceCommand(opts))
	rootCmd.AddCommand(newCheckIntegrityCommand(opts))

	return rootCmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	if o.output != outputText && o.output != outputJSON {
		return fmt.Errorf("unsupported output format %q", o.output)
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	o.cfg = cfg

	l, err := logger.New(logger.Config{IsProduction: cfg.IsProduction, Level: cfg.LogLevel})
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	cmd.SetContext(logger.WithContext(cmd.Context(), l))
	return nil
}

func newPgxServices(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error) {
	coa, err := chart.Load(cfg.ChartOfAccountsPath)
	if err != nil {
		return nil, nil, err
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, nil, err
	}

	svc := services.NewContainer(pgsql.NewRepositoryProvider(pool), containerConfig(cfg, coa))
	return svc, func() { database.ClosePgxPool(pool) }, nil
}

func containerConfig(cfg *config.Config, coa *domain.ChartOfAccounts) services.ContainerConfig {
	return services.ContainerConfig{
		BaseCurrency:   cfg.BaseCurrency,
		Chart:          coa,
		DocumentTables: cfg.DocumentTables,
		RetryPolicy: services.RetryPolicy{
			MaxCreateAttempts: cfg.RunCreateAttempts,
			BaseDelay:         cfg.RunCreateDelay,
		},
		BalancePolicy: services.BalancePolicy{
			ValidateOnPost:   cfg.ValidateOnPost,
			BatchConcurrency: cfg.BatchConcurrency,
		},
	}
}

// withServices runs fn against a freshly built container and releases it afterwards.
func (o *rootOptions) withServices(ctx context.Context, fn func(svc *portssvc.ServiceContainer) error) error {
	svc, cleanup, err := o.newServices(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(svc)
}
