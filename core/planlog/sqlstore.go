package planlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// sqlStore holds the logic shared by the SQLite and Postgres journals. The
// two differ only in their driver, schema and placeholder syntax.
type sqlStore struct {
	db *sql.DB
	// placeholder renders the n-th bind parameter, starting at 1.
	placeholder func(n int) string
}

func openSQL(driver, dsn string, schema []string, placeholder func(int) string) (*sqlStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &sqlStore{db: db, placeholder: placeholder}, nil
}

func (s *sqlStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO plan_records (id, ts, outcome, strategy, record) VALUES (%s, %s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4), s.placeholder(5))
	_, err = s.db.ExecContext(ctx, q, rec.ID, rec.Timestamp.UnixNano(), rec.Outcome, rec.Strategy, string(b))
	return err
}

func (s *sqlStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, s.placeholder(len(args))))
	}
	if !q.Start.IsZero() {
		add("ts >= %s", q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		add("ts <= %s", q.End.UnixNano())
	}
	if q.ID != "" {
		add("id = %s", q.ID)
	}
	if q.Outcome != "" {
		add("outcome = %s", q.Outcome)
	}
	if q.Strategy != "" {
		add("strategy = %s", q.Strategy)
	}
	query := `SELECT record FROM plan_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		// Station filtering needs the decoded plan.
		if q.StationID != "" && !q.Match(r) {
			continue
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return finish(res, q.Limit), nil
}

func (s *sqlStore) Close() error { return s.db.Close() }

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }
