// Package ledger holds the in-memory ledger and every mutation on it.
//
// A Store is safe for concurrent use: one writer at a time, and readers get
// snapshots that later writes never touch.
package ledger

import (
	"fmt"
	"strings"
	"sync"

	"hamanets/internal/core"
	"hamanets/internal/period"

	"github.com/google/uuid"
)

// IDGenerator returns a fresh identifier for a new entity.
type IDGenerator func() string

// NewUUID returns a time-ordered UUIDv7, falling back to v4.
func NewUUID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to default transaction dates.
func WithClock(c period.Clock) Option { return func(s *Store) { s.clock = c } }

// WithIDGenerator replaces the identifier source.
func WithIDGenerator(g IDGenerator) Option { return func(s *Store) { s.newID = g } }

// Store is the mutable ledger. Slices held by the store are never modified
// in place: every write installs a new slice, so a snapshot handed to a
// reader stays consistent.
type Store struct {
	mu       sync.RWMutex
	state    core.State
	revision uint64

	clock period.Clock
	newID IDGenerator
}

// New returns a store initialized with state.
func New(state core.State, opts ...Option) *Store {
	s := &Store{
		state: state.Clone(),
		clock: period.SystemClock,
		newID: NewUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.Settings == (core.Settings{}) {
		s.state.Settings = core.DefaultSettings
	}
	return s
}

// NewDefault returns a store seeded with DefaultState.
func NewDefault(opts ...Option) *Store {
	s := New(core.State{}, opts...)
	s.state = core.DefaultState(s.clock.Now(), s.newID)
	return s
}

// Revision increases by one on every effective mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace installs state wholesale, e.g. after a load.
func (s *Store) Replace(state core.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.revision++
}

// Transactions returns the ledger newest first. The slice is shared and
// must be treated as read-only.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Transactions
}

// Categories returns the category list. Read-only, like Transactions.
func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Categories
}

// Category looks up a category; ok is false for dangling references.
func (s *Store) Category(id string) (core.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findCategory(s.state.Categories, id)
}

func (s *Store) Budgets() []core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Budgets
}

func (s *Store) Reminders() []core.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Reminders
}

func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Settings
}

func findCategory(cats []core.Category, id string) (core.Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// AddTransaction validates tx, assigns an id and prepends it.
func (s *Store) AddTransaction(tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = s.newID()
	if err := s.prepareTransaction(&tx); err != nil {
		return core.Transaction{}, err
	}
	next := make([]core.Transaction, 0, len(s.state.Transactions)+1)
	next = append(next, tx)
	s.state.Transactions = append(next, s.state.Transactions...)
	s.revision++
	return tx, nil
}

// UpdateTransaction replaces the transaction with the same id. changed is
// false, and the store untouched, when no such transaction exists.
func (s *Store) UpdateTransaction(tx core.Transaction) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Transactions, tx.ID, func(t core.Transaction) string { return t.ID })
	if i < 0 {
		return false, nil
	}
	if err := s.prepareTransaction(&tx); err != nil {
		return false, err
	}
	s.state.Transactions = replaced(s.state.Transactions, i, tx)
	s.revision++
	return true, nil
}

func (s *Store) DeleteTransaction(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Transactions, id, func(t core.Transaction) string { return t.ID })
	if i < 0 {
		return false
	}
	s.state.Transactions = removed(s.state.Transactions, i)
	s.revision++
	return true
}

// prepareTransaction fills defaults and runs boundary validation. Caller
// holds the write lock.
func (s *Store) prepareTransaction(tx *core.Transaction) error {
	if tx.Currency == "" {
		tx.Currency = s.state.Settings.DefaultCurrency
	}
	if tx.Date.IsZero() {
		tx.Date = s.clock.Now()
	}
	tx.Description = strings.TrimSpace(tx.Description)
	if err := tx.Validate(); err != nil {
		return err
	}
	c, ok := findCategory(s.state.Categories, tx.CategoryID)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownCategory, tx.CategoryID)
	}
	if !c.Accepts(tx.Type) {
		return fmt.Errorf("%w: %s is %s", core.ErrCategoryMismatch, c.ID, c.Type)
	}
	if tx.Tags != nil {
		tx.Tags = append([]string(nil), tx.Tags...)
	}
	return nil
}

// AddCategory appends a user-defined category. IsCustom is always set.
func (s *Store) AddCategory(c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.newID()
	c.Name = strings.TrimSpace(c.Name)
	c.IsCustom = true
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.state.Categories = appended(s.state.Categories, c)
	s.revision++
	return c, nil
}

// UpdateCategory replaces by id. The stored IsCustom flag is kept so a
// built-in category cannot be turned into a deletable one.
func (s *Store) UpdateCategory(c core.Category) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Categories, c.ID, func(c core.Category) string { return c.ID })
	if i < 0 {
		return false, nil
	}
	c.Name = strings.TrimSpace(c.Name)
	c.IsCustom = s.state.Categories[i].IsCustom
	if err := c.Validate(); err != nil {
		return false, err
	}
	s.state.Categories = replaced(s.state.Categories, i, c)
	s.revision++
	return true, nil
}

// DeleteCategory removes a custom category. Built-in categories are
// refused with core.ErrCategoryBuiltIn; unknown ids are a no-op.
func (s *Store) DeleteCategory(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Categories, id, func(c core.Category) string { return c.ID })
	if i < 0 {
		return false, nil
	}
	if !s.state.Categories[i].IsCustom {
		return false, fmt.Errorf("%w: %s", core.ErrCategoryBuiltIn, id)
	}
	s.state.Categories = removed(s.state.Categories, i)
	s.revision++
	return true, nil
}

// AddBudget appends a budget with Spent reset to zero.
func (s *Store) AddBudget(b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.newID()
	b.Spent = core.Money{}
	if err := s.prepareBudget(&b); err != nil {
		return core.Budget{}, err
	}
	s.state.Budgets = appended(s.state.Budgets, b)
	s.revision++
	return b, nil
}

func (s *Store) UpdateBudget(b core.Budget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Budgets, b.ID, func(b core.Budget) string { return b.ID })
	if i < 0 {
		return false, nil
	}
	if err := s.prepareBudget(&b); err != nil {
		return false, err
	}
	s.state.Budgets = replaced(s.state.Budgets, i, b)
	s.revision++
	return true, nil
}

func (s *Store) DeleteBudget(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Budgets, id, func(b core.Budget) string { return b.ID })
	if i < 0 {
		return false
	}
	s.state.Budgets = removed(s.state.Budgets, i)
	s.revision++
	return true
}

func (s *Store) prepareBudget(b *core.Budget) error {
	if b.Currency == "" {
		b.Currency = s.state.Settings.DefaultCurrency
	}
	if b.Period == "" {
		b.Period = core.PeriodMonthly
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if _, ok := findCategory(s.state.Categories, b.CategoryID); !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownCategory, b.CategoryID)
	}
	return nil
}

func (s *Store) AddReminder(r core.Reminder) (core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.newID()
	if err := s.prepareReminder(&r); err != nil {
		return core.Reminder{}, err
	}
	s.state.Reminders = appended(s.state.Reminders, r)
	s.revision++
	return r, nil
}

func (s *Store) UpdateReminder(r core.Reminder) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Reminders, r.ID, func(r core.Reminder) string { return r.ID })
	if i < 0 {
		return false, nil
	}
	if err := s.prepareReminder(&r); err != nil {
		return false, err
	}
	s.state.Reminders = replaced(s.state.Reminders, i, r)
	s.revision++
	return true, nil
}

func (s *Store) DeleteReminder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Reminders, id, func(r core.Reminder) string { return r.ID })
	if i < 0 {
		return false
	}
	s.state.Reminders = removed(s.state.Reminders, i)
	s.revision++
	return true
}

func (s *Store) prepareReminder(r *core.Reminder) error {
	if r.Currency == "" {
		r.Currency = s.state.Settings.DefaultCurrency
	}
	r.Title = strings.TrimSpace(r.Title)
	if !r.IsRecurring {
		r.RecurringInterval = ""
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if _, ok := findCategory(s.state.Categories, r.CategoryID); !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownCategory, r.CategoryID)
	}
	return nil
}

// UpdateSettings merges patch into the current settings.
func (s *Store) UpdateSettings(patch core.SettingsPatch) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Settings.Apply(patch)
	if err := next.Validate(); err != nil {
		return s.state.Settings, err
	}
	if next != s.state.Settings {
		s.state.Settings = next
		s.revision++
	}
	return next, nil
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	if id == "" {
		return -1
	}
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}

func appended[T any](items []T, v T) []T {
	next := make([]T, len(items), len(items)+1)
	copy(next, items)
	return append(next, v)
}

func replaced[T any](items []T, i int, v T) []T {
	next := make([]T, len(items))
	copy(next, items)
	next[i] = v
	return next
}

func removed[T any](items []T, i int) []T {
	next := make([]T, 0, len(items)-1)
	next = append(next, items[:i]...)
	return append(next, items[i+1:]...)
}
