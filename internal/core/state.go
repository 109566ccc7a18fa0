package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoState means nothing has been stored yet. Callers start from
	// DefaultState.
	ErrNoState = errors.New("no stored state")
	// ErrMalformedState means stored data exists but cannot be used.
	ErrMalformedState = errors.New("malformed stored state")
)

// State is the complete persisted ledger document.
type State struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	Budgets      []Budget      `json:"budgets"`
	Reminders    []Reminder    `json:"reminders"`
	Settings     Settings      `json:"settings"`
}

// Clone returns a deep copy so callers can mutate freely.
func (s State) Clone() State {
	out := State{
		Transactions: make([]Transaction, len(s.Transactions)),
		Categories:   append([]Category(nil), s.Categories...),
		Budgets:      append([]Budget(nil), s.Budgets...),
		Reminders:    append([]Reminder(nil), s.Reminders...),
		Settings:     s.Settings,
	}
	for i, tx := range s.Transactions {
		if tx.Tags != nil {
			tx.Tags = append([]string(nil), tx.Tags...)
		}
		out.Transactions[i] = tx
	}
	if out.Categories == nil {
		out.Categories = []Category{}
	}
	if out.Budgets == nil {
		out.Budgets = []Budget{}
	}
	if out.Reminders == nil {
		out.Reminders = []Reminder{}
	}
	return out
}

// Validate checks the structural invariants a loaded document must hold.
// Dangling category references are allowed.
func (s State) Validate() error {
	seen := make(map[string]struct{})
	check := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		key := kind + "/" + id
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[key] = struct{}{}
		return nil
	}
	for _, tx := range s.Transactions {
		if err := check("transaction", tx.ID); err != nil {
			return err
		}
		if !tx.Type.Valid() {
			return fmt.Errorf("transaction %s: %w", tx.ID, ErrInvalidType)
		}
		if tx.Amount.IsNegative() {
			return fmt.Errorf("transaction %s: negative amount", tx.ID)
		}
	}
	for _, c := range s.Categories {
		if err := check("category", c.ID); err != nil {
			return err
		}
		if !c.Type.Valid() {
			return fmt.Errorf("category %s: %w", c.ID, ErrInvalidType)
		}
	}
	for _, b := range s.Budgets {
		if err := check("budget", b.ID); err != nil {
			return err
		}
	}
	for _, r := range s.Reminders {
		if err := check("reminder", r.ID); err != nil {
			return err
		}
	}
	return nil
}

// DecodeState parses a persisted document. Empty input reports ErrNoState;
// anything undecodable or structurally invalid reports ErrMalformedState.
func DecodeState(data []byte) (State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return State{}, ErrNoState
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if err := s.Validate(); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return s.Clone(), nil
}

// EncodeState renders the persisted document.
func EncodeState(s State) ([]byte, error) {
	return json.MarshalIndent(s.Clone(), "", "  ")
}
