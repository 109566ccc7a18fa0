package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"hamanets/internal/backend"
	"hamanets/internal/cli"
	"hamanets/internal/config"
	"hamanets/internal/ledger"
	"hamanets/internal/log"
	"hamanets/internal/services"
)

// Viper keys. Environment variables use the HAMANETS_ prefix, for example
// HAMANETS_DATA_BACKEND.
const (
	keyBackend    = "data_backend"
	keySQLitePath = "sqlite_db_path"
	keyJSONPath   = "json_data_path"
	keyLocale     = "locale"
	keyPolicy     = "budget_policy"
	keyLogLevel   = "log_level"
	keyLogFormat  = "log_format"
	keyJSON       = "json"
)

type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{v: viper.New(), logger: log.Discard()}

	cmd := &cobra.Command{
		Use:   "hamanetsctl",
		Short: "Personal income and expense ledger",
		Long: `hamanetsctl reads and edits the hamanets ledger: monthly summaries,
budgets, reminders, CSV export and bank statement import.

It works on the same repository as the server, selected with --backend
or DATA_BACKEND.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.initConfig,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (default: $HOME/.config/hamanets/config.yaml)")
	pf.String("backend", "", "data backend (memory, json, sqlite)")
	pf.String("sqlite-path", "", "SQLite database path")
	pf.String("json-path", "", "JSON ledger file path")
	pf.String("locale", "", "locale for amounts and export labels (uk, en)")
	pf.String("budget-policy", "", "budget window policy (current-month, period-aware)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.Bool("json", false, "print JSON instead of tables")

	_ = o.v.BindPFlag(keyBackend, pf.Lookup("backend"))
	_ = o.v.BindPFlag(keySQLitePath, pf.Lookup("sqlite-path"))
	_ = o.v.BindPFlag(keyJSONPath, pf.Lookup("json-path"))
	_ = o.v.BindPFlag(keyLocale, pf.Lookup("locale"))
	_ = o.v.BindPFlag(keyPolicy, pf.Lookup("budget-policy"))
	_ = o.v.BindPFlag(keyLogLevel, pf.Lookup("log-level"))
	_ = o.v.BindPFlag(keyLogFormat, pf.Lookup("log-format"))
	_ = o.v.BindPFlag(keyJSON, pf.Lookup("json"))

	cmd.AddCommand(
		summaryCmd(o),
		weeklyCmd(o),
		trendCmd(o),
		budgetsCmd(o),
		forecastCmd(o),
		exportCmd(o),
		addCmd(o),
		importOFXCmd(o),
		categoriesCmd(o),
		remindersCmd(o),
		seedCmd(o),
		sheetsAuthCmd(o),
	)
	return cmd
}

func (o *rootOptions) initConfig(cmd *cobra.Command, _ []string) error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			o.v.AddConfigPath(filepath.Join(home, ".config", "hamanets"))
		}
		o.v.AddConfigPath(".")
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
	}

	o.v.SetEnvPrefix("HAMANETS")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	lcfg := log.DefaultConfig()
	lcfg.Level = log.ParseLevel(o.v.GetString(keyLogLevel))
	lcfg.Format = o.v.GetString(keyLogFormat)
	lcfg.Component = log.ComponentCLI
	lcfg.Output = cmd.ErrOrStderr()
	o.logger = log.New(lcfg)
	return nil
}

// config starts from the environment and applies any flag, HAMANETS_*
// variable or config file value on top.
func (o *rootOptions) config() (*config.Config, error) {
	cfg := config.Load()
	override := func(key string, dst *string) {
		if o.v.IsSet(key) && o.v.GetString(key) != "" {
			*dst = o.v.GetString(key)
		}
	}
	override(keyBackend, &cfg.DataBackend)
	override(keySQLitePath, &cfg.SQLiteDBPath)
	override(keyJSONPath, &cfg.JSONDataPath)
	override(keyLocale, &cfg.Locale)
	override(keyPolicy, &cfg.BudgetPolicy)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) jsonOutput() bool { return o.v.GetBool(keyJSON) }

// app is an opened ledger with its service.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *ledger.Store
	svc    *services.LedgerService
	res    *backend.BackendResult
}

func (o *rootOptions) open(ctx context.Context) (*app, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(o.logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	if !bcfg.Type.Persistent() {
		o.logger.Warn("Ledger is held in memory; changes are lost when the command exits", "backend", bcfg.Type)
	}
	store, err := cli.OpenLedger(ctx, o.logger, res.Repository, cfg.SeedDemo)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: o.logger,
		store:  store,
		svc:    services.NewLedgerService(store, res.Repository, services.PublisherFrom(res.AMQP), o.logger),
		res:    res,
	}, nil
}

func (a *app) close() {
	if err := a.res.Cleanup(); err != nil {
		a.logger.Warn("Backend cleanup failed", log.FieldError, err)
	}
}

func (a *app) locale() language.Tag {
	tag, err := language.Parse(a.cfg.Locale)
	if err != nil {
		return language.Ukrainian
	}
	return tag
}

// withApp opens the ledger around fn.
func (o *rootOptions) withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := o.open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}
