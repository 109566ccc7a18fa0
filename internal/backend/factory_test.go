package backend

import (
	"context"
	"path/filepath"
	"testing"

	"hamanets/internal/config"
	"hamanets/internal/log"
	"hamanets/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "json", JSONDataPath: "x.json", AMQPExchange: "e"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != JSONBackend || cfg.JSONDataPath != "x.json" || cfg.AMQPExchange != "e" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"json without path", Config{Type: JSONBackend}, true},
		{"json with path", Config{Type: JSONBackend, JSONDataPath: "a.json"}, false},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
		{"invalid type", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
		check  func(storage.Repository) bool
	}{
		{"memory", Config{Type: MemoryBackend}, func(r storage.Repository) bool {
			_, ok := r.(*storage.MemoryRepository)
			return ok
		}},
		{"json", Config{Type: JSONBackend, JSONDataPath: filepath.Join(dir, "l.json")}, func(r storage.Repository) bool {
			_, ok := r.(*storage.FileRepository)
			return ok
		}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "l.db")}, func(r storage.Repository) bool {
			_, ok := r.(*storage.SQLiteRepository)
			return ok
		}},
	}

	factory := NewFactory(log.Discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := factory.CreateBackend(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			if !tt.check(res.Repository) {
				t.Errorf("unexpected repository type %T", res.Repository)
			}
			if res.AMQP != nil {
				t.Error("AMQP client should be nil without a URL")
			}
			if err := res.Cleanup(); err != nil {
				t.Errorf("Cleanup() error = %v", err)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 3 || got[0] != "sqlite" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

func TestBackendTypePersistent(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if got, want := bt.Persistent(), bt != MemoryBackend; got != want {
			t.Errorf("%s.Persistent() = %v, want %v", bt, got, want)
		}
	}
}
