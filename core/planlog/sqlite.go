package planlog

import (
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{`CREATE TABLE IF NOT EXISTS plan_records (
	id TEXT PRIMARY KEY,
	ts INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	strategy TEXT,
	record TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS plan_records_ts ON plan_records (ts)`,
}

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	s, err := openSQL("sqlite", path, sqliteSchema, questionMark)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{s}, nil
}
