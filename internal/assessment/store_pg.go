package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type storePG struct{ db queryable }

// NewStorePG stores history in the assessments table created by the
// platform/db migrations.
func NewStorePG(pool *pgxpool.Pool) Store { return &storePG{db: pool} }

const assessmentCols = `id, user_id, mental_score, physical_score, overall_risk,
	level, route, reasoning, recommendations, created_at`

func (s *storePG) Append(ctx context.Context, userID string, r Result) error {
	recs, err := json.Marshal(r.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO assessments (`+assessmentCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, userID, r.MentalScore, r.PhysicalScore, r.OverallRisk,
		string(r.Level), string(r.Route), r.Reasoning, recs, r.Timestamp)
	return err
}

func (s *storePG) ListByUser(ctx context.Context, userID string) ([]Result, error) {
	rows, err := s.db.Query(ctx, `SELECT `+assessmentCols+` FROM assessments
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Result{}
	for rows.Next() {
		var r Result
		var recs []byte
		if err := rows.Scan(&r.ID, &r.UserID, &r.MentalScore, &r.PhysicalScore, &r.OverallRisk,
			&r.Level, &r.Route, &r.Reasoning, &recs, &r.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(recs, &r.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations for %s: %w", r.ID, err)
		}
		r.Timestamp = r.Timestamp.UTC()
		items = append(items, r)
	}
	return items, rows.Err()
}
