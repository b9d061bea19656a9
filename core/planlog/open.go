package planlog

import (
	"context"
	"fmt"

	"github.com/kilianp07/evroute/config"
)

// Open builds the store selected by cfg. The none backend yields a store
// that discards everything.
func Open(cfg config.JournalConfig) (Store, error) {
	switch cfg.Backend {
	case config.JournalNone:
		return NopStore{}, nil
	case config.JournalJSONL, "":
		if cfg.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return NewJSONLStore(cfg.Path)
	case config.JournalSQLite:
		return NewSQLiteStore(cfg.Path)
	case config.JournalPostgres:
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
	}
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
