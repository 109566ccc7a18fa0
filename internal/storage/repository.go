// Package storage persists the ledger document. Every backend loads and
// saves a whole core.State; the ledger itself stays in memory.
package storage

import (
	"context"
	"sync"

	"hamanets/internal/core"
)

// Repository loads and saves the ledger.
//
// Load returns core.ErrNoState when nothing has been saved yet and an
// error wrapping core.ErrMalformedState when stored data is unusable.
type Repository interface {
	Load(ctx context.Context) (core.State, error)
	Save(ctx context.Context, s core.State) error
	Close() error
}

// LoadOrDefault loads the stored state, falling back to seed when nothing
// is stored. Malformed data is reported, never replaced.
func LoadOrDefault(ctx context.Context, repo Repository, seed func() core.State) (core.State, bool, error) {
	s, err := repo.Load(ctx)
	switch {
	case err == nil:
		return s, false, nil
	case isNoState(err):
		return seed(), true, nil
	default:
		return core.State{}, false, err
	}
}

// MemoryRepository keeps the encoded document in memory.
type MemoryRepository struct {
	mu   sync.Mutex
	data []byte
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*FileRepository)(nil)
	_ Repository = (*SQLiteRepository)(nil)
)

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (m *MemoryRepository) Load(ctx context.Context) (core.State, error) {
	if err := ctx.Err(); err != nil {
		return core.State{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.DecodeState(m.data)
}

func (m *MemoryRepository) Save(ctx context.Context, s core.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := core.EncodeState(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Close() error { return nil }
