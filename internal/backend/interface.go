// Package backend opens the ledger repository the configuration asks for,
// plus the optional change-event broker.
package backend

import (
	"context"

	"hamanets/internal/amqp"
	"hamanets/internal/storage"
)

type CleanupFunc func() error

// BackendResult is an opened backend. AMQP is nil when no broker is
// configured or the broker could not be reached. Cleanup closes both.
type BackendResult struct {
	Repository storage.Repository
	AMQP       *amqp.Client
	Cleanup    CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config names the repository and broker to open.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	JSONDataPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	JSONBackend   BackendType = "json"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == JSONBackend || bt == MemoryBackend
}

// Persistent reports whether the ledger outlives the process.
func (bt BackendType) Persistent() bool { return bt == SQLiteBackend || bt == JSONBackend }
