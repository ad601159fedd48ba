package config

import (
	"errors"
	"fmt"
	"os"
)

// Backend names accepted in LEDGER_STORE.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Log formats accepted in LOG_FORMAT.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Store       string // LEDGER_STORE: "file" or "postgres"
	File        string // LEDGER_FILE
	DatabaseURL string // DATABASE_URL, required for the postgres store
	Addr        string // HTTP_ADDR
	LogLevel    string // LOG_LEVEL
	LogFormat   string // LOG_FORMAT: "console" or "json"
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config using lookup to read variables.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Store:       get("LEDGER_STORE", BackendFile),
		File:        get("LEDGER_FILE", "data.json"),
		DatabaseURL: get("DATABASE_URL", ""),
		Addr:        get("HTTP_ADDR", ":8080"),
		LogLevel:    get("LOG_LEVEL", "info"),
		LogFormat:   get("LOG_FORMAT", FormatConsole),
	}

	if cfg.LogFormat != FormatConsole && cfg.LogFormat != FormatJSON {
		return Config{}, fmt.Errorf("unknown LOG_FORMAT %q (want %q or %q)", cfg.LogFormat, FormatConsole, FormatJSON)
	}

	switch cfg.Store {
	case BackendFile:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL environment variable is not set")
		}
	default:
		return Config{}, fmt.Errorf("unknown LEDGER_STORE %q (want %q or %q)", cfg.Store, BackendFile, BackendPostgres)
	}
	return cfg, nil
}
