package assessment

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteStore keeps history in a local SQLite file, for single node
// deployments without PostgreSQL.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates if needed) the database at path.
// ":memory:" is accepted.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// an in-memory database exists per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, userID string, r Result) error {
	recs, err := json.Marshal(r.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, user_id, mental_score, physical_score, overall_risk,
			level, route, reasoning, recommendations, created_at_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), userID, r.MentalScore, r.PhysicalScore, r.OverallRisk,
		string(r.Level), string(r.Route), r.Reasoning, string(recs), r.Timestamp.UnixMicro())
	return err
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, mental_score, physical_score, overall_risk,
			level, route, reasoning, recommendations, created_at_us
		FROM assessments WHERE user_id = ?
		ORDER BY created_at_us DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Result{}
	for rows.Next() {
		var (
			r       Result
			id      string
			recs    string
			created int64
		)
		if err := rows.Scan(&id, &r.UserID, &r.MentalScore, &r.PhysicalScore, &r.OverallRisk,
			&r.Level, &r.Route, &r.Reasoning, &recs, &created); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse assessment id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(recs), &r.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations for %s: %w", id, err)
		}
		r.Timestamp = time.UnixMicro(created).UTC()
		items = append(items, r)
	}
	return items, rows.Err()
}
