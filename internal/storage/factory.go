// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/planewar/planewar/internal/config"
	"github.com/planewar/planewar/internal/storage/memory"
	sqlitestorage "github.com/planewar/planewar/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration.
// name identifies the journal; sqlite uses it to keep concurrent sessions apart.
func NewBackend(cfg config.StorageConfig, name string, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlitestorage.New(name, log), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
