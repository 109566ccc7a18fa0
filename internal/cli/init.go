// Package cli provides common initialization shared by cmd/hamanets,
// cmd/hamanets-worker and cmd/hamanetsctl.
package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/joho/godotenv"

	"hamanets/internal/backend"
	"hamanets/internal/config"
	"hamanets/internal/core"
	"hamanets/internal/export"
	"hamanets/internal/ledger"
	"hamanets/internal/log"
	"hamanets/internal/period"
	"hamanets/internal/stats"
	"hamanets/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		cfg.Format = f
	}
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured repository and optional AMQP client.
// Exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return res
}

// OpenLedger loads the stored ledger into a Store. When nothing is stored
// yet the default seed, plus demo transactions if requested, is saved
// first so later loads see the same data.
func OpenLedger(ctx context.Context, logger *log.Logger, repo storage.Repository, seedDemo bool, opts ...ledger.Option) (*ledger.Store, error) {
	seed := func() core.State {
		s := ledger.NewDefault(opts...).Snapshot()
		if seedDemo {
			now := period.SystemClock.Now()
			s.Transactions = ledger.DemoTransactions(now, rand.New(rand.NewSource(now.UnixNano())), nil)
		}
		return s
	}

	state, fresh, err := storage.LoadOrDefault(ctx, repo, seed)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if fresh {
		if err := repo.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("save seed ledger: %w", err)
		}
		logger.InfoContext(ctx, "Seeded new ledger",
			log.FieldCount, len(state.Transactions),
			"demo", seedDemo)
	}
	return ledger.New(state, opts...), nil
}

// BudgetPolicy maps the BUDGET_POLICY setting onto a stats policy.
func BudgetPolicy(cfg *config.Config) stats.BudgetPolicy {
	if cfg.BudgetPolicy == config.PolicyPeriodAware {
		return stats.PeriodAware
	}
	return stats.CurrentMonth
}

// Labels returns the export labels for the configured locale.
func Labels(cfg *config.Config) export.Labels {
	return export.LabelsFor(cfg.Locale)
}
