package config

import "fmt"

// Journal backends.
const (
	JournalNone     = "none"
	JournalJSONL    = "jsonl"
	JournalSQLite   = "sqlite"
	JournalPostgres = "postgres"
)

// JournalConfig selects where plan records are stored.
type JournalConfig struct {
	// Backend is one of none, jsonl, sqlite or postgres.
	Backend string `json:"backend"`
	// Path is the file location for jsonl and sqlite.
	Path string `json:"path"`
	// DSN is the postgres connection string.
	DSN string `json:"dsn"`
	// MaxSizeMB enables jsonl rotation when positive.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *JournalConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = JournalJSONL
	}
	if c.Path == "" {
		switch c.Backend {
		case JournalJSONL:
			c.Path = "plans.jsonl"
		case JournalSQLite:
			c.Path = "plans.db"
		}
	}
}

// Validate checks mandatory fields.
func (c JournalConfig) Validate() error {
	switch c.Backend {
	case JournalNone:
	case JournalJSONL, JournalSQLite:
		if c.Path == "" {
			return fmt.Errorf("path is required for %s", c.Backend)
		}
	case JournalPostgres:
		if c.DSN == "" {
			return fmt.Errorf("dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("rotation settings must not be negative")
	}
	return nil
}
