package planlog

import (
	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresSchema = []string{`CREATE TABLE IF NOT EXISTS plan_records (
	id TEXT PRIMARY KEY,
	ts BIGINT NOT NULL,
	outcome TEXT NOT NULL,
	strategy TEXT,
	record JSONB NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS plan_records_ts ON plan_records (ts)`,
}

// PostgresStore persists records to PostgreSQL through the pgx driver.
type PostgresStore struct {
	*sqlStore
}

// NewPostgresStore connects to dsn and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	s, err := openSQL("pgx", dsn, postgresSchema, dollar)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{s}, nil
}
