package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"hamanets/internal/core"
)

// FileRepository stores the ledger as one JSON document on disk.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileRepository{path: path}, nil
}

func (f *FileRepository) Path() string { return f.path }

func (f *FileRepository) Load(ctx context.Context) (core.State, error) {
	if err := ctx.Err(); err != nil {
		return core.State{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.State{}, core.ErrNoState
	}
	if err != nil {
		return core.State{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	s, err := core.DecodeState(b)
	if err != nil {
		return core.State{}, fmt.Errorf("load %s: %w", f.path, err)
	}
	return s, nil
}

// Save writes to a temporary file and renames it over the target, so a
// crash mid-write never leaves a truncated document.
func (f *FileRepository) Save(ctx context.Context, s core.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := core.EncodeState(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *FileRepository) Close() error { return nil }

func isNoState(err error) bool { return errors.Is(err, core.ErrNoState) }
