package backend

import (
	"errors"
	"fmt"

	"hamanets/internal/config"
)

// FromAppConfig picks the backend settings out of the process config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:         BackendType(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
		JSONDataPath: cfg.JSONDataPath,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		AMQPQueue:    cfg.AMQPQueue,
	}
	if !c.Type.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}
	return c, nil
}

// Validate reports every missing setting at once.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	var errs []error
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		errs = append(errs, errors.New("SQLite database path is required for sqlite backend"))
	}
	if c.Type == JSONBackend && c.JSONDataPath == "" {
		errs = append(errs, errors.New("JSON data path is required for json backend"))
	}
	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errs = append(errs, errors.New("AMQP exchange is required when AMQP URL is set"))
		}
		if c.AMQPQueue == "" {
			errs = append(errs, errors.New("AMQP queue is required when AMQP URL is set"))
		}
	}
	return errors.Join(errs...)
}

// GetBackendTypes lists the supported backends, preferred first.
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, JSONBackend, MemoryBackend}
}

func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
