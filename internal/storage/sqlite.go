package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hamanets/internal/core"
	"hamanets/internal/log"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// SQLiteRepository stores the ledger in normalized SQLite tables. A save
// rewrites every table inside one transaction.
type SQLiteRepository struct {
	db      *sql.DB
	version uint
	logger  *log.Logger
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint { return r.version }

// NewSQLiteRepository opens dbPath and migrates it. A nil logger discards.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	logger.Debug("SQLite schema ready", "db_path", dbPath, "version", version)
	return &SQLiteRepository{db: db, version: version, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Load(ctx context.Context) (core.State, error) {
	var s core.State

	settings, found, err := r.loadSettings(ctx)
	if err != nil {
		return core.State{}, err
	}
	s.Settings = settings

	if s.Categories, err = r.loadCategories(ctx); err != nil {
		return core.State{}, err
	}
	if s.Transactions, err = r.loadTransactions(ctx); err != nil {
		return core.State{}, err
	}
	if s.Budgets, err = r.loadBudgets(ctx); err != nil {
		return core.State{}, err
	}
	if s.Reminders, err = r.loadReminders(ctx); err != nil {
		return core.State{}, err
	}

	if !found && len(s.Categories) == 0 && len(s.Transactions) == 0 && len(s.Budgets) == 0 && len(s.Reminders) == 0 {
		return core.State{}, core.ErrNoState
	}
	if err := s.Validate(); err != nil {
		return core.State{}, fmt.Errorf("%w: %v", core.ErrMalformedState, err)
	}
	return s.Clone(), nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s core.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "categories", "budgets", "reminders", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, c := range s.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, position, name, icon, color, type, is_custom) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, i, c.Name, c.Icon, c.Color, string(c.Type), c.IsCustom,
		); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	for i, t := range s.Transactions {
		tags, err := json.Marshal(nonNil(t.Tags))
		if err != nil {
			return fmt.Errorf("encode tags for %s: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, position, type, amount, currency, category_id, description, occurred_at, is_recurring, recurring_interval, tags)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, string(t.Type), t.Amount.String(), string(t.Currency), t.CategoryID, t.Description,
			t.Date.Format(timeLayout), t.IsRecurring, string(t.RecurringInterval), string(tags),
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	for i, b := range s.Budgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (id, position, category_id, amount, currency, period, spent) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, i, b.CategoryID, b.Amount.String(), string(b.Currency), string(b.Period), b.Spent.String(),
		); err != nil {
			return fmt.Errorf("insert budget %s: %w", b.ID, err)
		}
	}

	for i, rm := range s.Reminders {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reminders (id, position, title, amount, currency, category_id, due_date, is_recurring, recurring_interval, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rm.ID, i, rm.Title, rm.Amount.String(), string(rm.Currency), rm.CategoryID,
			rm.DueDate.Format(timeLayout), rm.IsRecurring, string(rm.RecurringInterval), rm.IsActive,
		); err != nil {
			return fmt.Errorf("insert reminder %s: %w", rm.ID, err)
		}
	}

	st := s.Settings
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (id, default_currency, theme, pin_enabled, pin, biometric_enabled, language) VALUES (1, ?, ?, ?, ?, ?, ?)`,
		string(st.DefaultCurrency), string(st.Theme), st.PinEnabled, st.Pin, st.BiometricEnabled, st.Language,
	); err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.DebugContext(ctx, "Ledger saved to SQLite",
		log.FieldOperation, log.OpSave,
		"transactions", len(s.Transactions),
		"categories", len(s.Categories),
		"budgets", len(s.Budgets),
		"reminders", len(s.Reminders))
	return nil
}

func (r *SQLiteRepository) loadSettings(ctx context.Context) (core.Settings, bool, error) {
	var (
		s                 core.Settings
		currency, theme   string
		pinOn, biometrics bool
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT default_currency, theme, pin_enabled, pin, biometric_enabled, language FROM settings WHERE id = 1`,
	).Scan(&currency, &theme, &pinOn, &s.Pin, &biometrics, &s.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings, false, nil
	}
	if err != nil {
		return core.Settings{}, false, fmt.Errorf("query settings: %w", err)
	}
	s.DefaultCurrency = core.Currency(currency)
	s.Theme = core.Theme(theme)
	s.PinEnabled = pinOn
	s.BiometricEnabled = biometrics
	return s, true, nil
}

func (r *SQLiteRepository) loadCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, icon, color, type, is_custom FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &typ, &c.IsCustom); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, amount, currency, category_id, description, occurred_at, is_recurring, recurring_interval, tags
		 FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t                                    core.Transaction
			typ, amount, currency, at, ivl, tags string
		)
		if err := rows.Scan(&t.ID, &typ, &amount, &currency, &t.CategoryID, &t.Description, &at, &t.IsRecurring, &ivl, &tags); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		t.Currency = core.Currency(currency)
		t.RecurringInterval = core.Interval(ivl)
		if t.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("%w: transaction %s amount: %v", core.ErrMalformedState, t.ID, err)
		}
		if t.Date, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("%w: transaction %s date: %v", core.ErrMalformedState, t.ID, err)
		}
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return nil, fmt.Errorf("%w: transaction %s tags: %v", core.ErrMalformedState, t.ID, err)
		}
		if len(t.Tags) == 0 {
			t.Tags = nil
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, amount, currency, period, spent FROM budgets ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		var (
			b                               core.Budget
			amount, currency, period, spent string
		)
		if err := rows.Scan(&b.ID, &b.CategoryID, &amount, &currency, &period, &spent); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Currency = core.Currency(currency)
		b.Period = core.BudgetPeriod(period)
		if b.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("%w: budget %s amount: %v", core.ErrMalformedState, b.ID, err)
		}
		if b.Spent, err = parseAmount(spent); err != nil {
			return nil, fmt.Errorf("%w: budget %s spent: %v", core.ErrMalformedState, b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadReminders(ctx context.Context) ([]core.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount, currency, category_id, due_date, is_recurring, recurring_interval, is_active
		 FROM reminders ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	out := []core.Reminder{}
	for rows.Next() {
		var (
			rm                         core.Reminder
			amount, currency, due, ivl string
		)
		if err := rows.Scan(&rm.ID, &rm.Title, &amount, &currency, &rm.CategoryID, &due, &rm.IsRecurring, &ivl, &rm.IsActive); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		rm.Currency = core.Currency(currency)
		rm.RecurringInterval = core.Interval(ivl)
		if rm.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("%w: reminder %s amount: %v", core.ErrMalformedState, rm.ID, err)
		}
		if rm.DueDate, err = time.Parse(timeLayout, due); err != nil {
			return nil, fmt.Errorf("%w: reminder %s due date: %v", core.ErrMalformedState, rm.ID, err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func parseAmount(s string) (core.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.NewMoney(d), nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
