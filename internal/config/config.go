// Package config loads trackcore runtime settings from the environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config captures the environment block consumed by storage selection and the
// batch runner.
//
//	TRACKCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	TRACKCORE_SQLITE_PATH: path to the sqlite file (default trackcore.db)
//	TRACKCORE_POSTGRES_DSN: postgres DSN when driver=postgres
//	TRACKCORE_JOURNAL_DIR: optional directory for the filesystem change journal
//	TRACKCORE_BCRYPT_COST: bcrypt cost for the credential hasher (0 = default)
type Config struct {
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"trackcore.db"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	JournalDir    string `envconfig:"JOURNAL_DIR"`
	BcryptCost    int    `envconfig:"BCRYPT_COST" default:"0"`
}

// Load reads the TRACKCORE_* environment block.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("trackcore", &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
