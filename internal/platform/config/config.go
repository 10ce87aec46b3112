package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds ledger configuration.
type Config struct {
	DatabaseURL   string
	IsProduction  bool
	EnableDBCheck bool
	LogLevel      string

	BaseCurrency      string
	ValidateOnPost    bool
	RunCreateAttempts int
	RunCreateDelay    time.Duration
	BatchConcurrency  int

	ChartOfAccountsPath string
	MigrationsPath      string
	// DocumentTables maps doc types to the business table holding their rows.
	DocumentTables map[string]string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("BASE_CURRENCY", "RUB")
	v.SetDefault("ACCOUNTING_VALIDATE_ON_POST", true)
	v.SetDefault("RUN_CREATE_MAX_ATTEMPTS", 2)
	v.SetDefault("RUN_CREATE_RETRY_DELAY", "0s")
	v.SetDefault("BATCH_VALIDATE_CONCURRENCY", 4)
	v.SetDefault("CHART_OF_ACCOUNTS_PATH", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("DOCUMENT_TABLES", "")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		BaseCurrency:        strings.ToUpper(strings.TrimSpace(v.GetString("BASE_CURRENCY"))),
		ValidateOnPost:      v.GetBool("ACCOUNTING_VALIDATE_ON_POST"),
		RunCreateAttempts:   v.GetInt("RUN_CREATE_MAX_ATTEMPTS"),
		BatchConcurrency:    v.GetInt("BATCH_VALIDATE_CONCURRENCY"),
		ChartOfAccountsPath: v.GetString("CHART_OF_ACCOUNTS_PATH"),
		MigrationsPath:      v.GetString("MIGRATIONS_PATH"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	// Validation on post cannot be switched off in production.
	if cfg.IsProduction && !cfg.ValidateOnPost {
		log.Println("Warning: ACCOUNTING_VALIDATE_ON_POST=false is ignored in production.")
		cfg.ValidateOnPost = true
	}

	delayStr := v.GetString("RUN_CREATE_RETRY_DELAY")
	delay, err := time.ParseDuration(delayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_CREATE_RETRY_DELAY %q: %w", delayStr, err)
	}
	cfg.RunCreateDelay = delay

	if cfg.RunCreateAttempts < 1 {
		log.Printf("Warning: RUN_CREATE_MAX_ATTEMPTS=%d is below 1. Defaulting to 2.\n", cfg.RunCreateAttempts)
		cfg.RunCreateAttempts = 2
	}
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}
	if cfg.BaseCurrency == "" {
		return nil, fmt.Errorf("BASE_CURRENCY must not be empty")
	}

	tables, err := parseDocumentTables(v.GetString("DOCUMENT_TABLES"))
	if err != nil {
		return nil, err
	}
	cfg.DocumentTables = tables

	return cfg, nil
}

// parseDocumentTables reads "DOC_TYPE=table,DOC_TYPE=table" pairs.
func parseDocumentTables(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		docType, table, ok := strings.Cut(pair, "=")
		docType, table = strings.TrimSpace(docType), strings.TrimSpace(table)
		if !ok || docType == "" || table == "" {
			return nil, fmt.Errorf("invalid DOCUMENT_TABLES entry %q, expected DOC_TYPE=table", pair)
		}
		out[strings.ToUpper(docType)] = table
	}
	return out, nil
}
