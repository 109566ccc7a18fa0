// Package memory is an in-process sheets.Mirror used by tests and by the
// worker when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	ports "hamanets/internal/sheets"
)

var _ ports.Mirror = (*Store)(nil)

type Store struct {
	mu           sync.Mutex
	transactions [][]string
	summary      [][]string
	writes       int
}

func New() *Store {
	return &Store{}
}

func (s *Store) WriteTransactions(ctx context.Context, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = cloneRows(rows)
	s.writes++
	return nil
}

func (s *Store) WriteSummary(ctx context.Context, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = cloneRows(rows)
	s.writes++
	return nil
}

// Transactions returns a copy of the last written transactions tab.
func (s *Store) Transactions() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.transactions)
}

// Summary returns a copy of the last written summary tab.
func (s *Store) Summary() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.summary)
}

// Writes counts successful write calls of either kind.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
