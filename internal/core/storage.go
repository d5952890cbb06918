package core

import (
	"fmt"

	"trackcore/internal/config"
	"trackcore/internal/infra/persistence/memory"
	"trackcore/internal/infra/persistence/postgres"
	"trackcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// NewMemoryStore constructs the in-memory backend with the given hook set.
func NewMemoryStore(hooks *HookSet) *memory.Store {
	return memory.NewStore(hooks)
}

// OpenPersistentStore selects a backend from the loaded configuration.
// Defaults to sqlite when unset.
func OpenPersistentStore(cfg config.Config, hooks *HookSet) (PersistentStore, error) {
	driver := cfg.StorageDriver
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(hooks), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, hooks)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, hooks)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
