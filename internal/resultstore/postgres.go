package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

const ddlResults = `
CREATE TABLE IF NOT EXISTS evaluation_results (
    id          BIGSERIAL    PRIMARY KEY,
    created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    speaker     TEXT         NOT NULL DEFAULT '',
    transcript  TEXT         NOT NULL DEFAULT '',
    strategy    TEXT         NOT NULL,
    score       DOUBLE PRECISION NOT NULL,
    detail      JSONB        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluation_results_speaker
    ON evaluation_results (speaker, created_at DESC);
`

// PostgresStore persists results in PostgreSQL. The full evaluation payload
// is kept as JSONB next to the queryable columns. All operations are safe
// for concurrent use.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool to the database at dsn and
// runs [Migrate]. The caller must call Close when done.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("resultstore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("resultstore: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("resultstore: migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the results table if it does not exist. It is idempotent
// and safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlResults); err != nil {
		return fmt.Errorf("resultstore migrate: %w", err)
	}
	return nil
}

// Save inserts one result row.
func (s *PostgresStore) Save(ctx context.Context, r Result) error {
	if r.Evaluation == nil {
		return fmt.Errorf("resultstore: result has no evaluation")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	detail, err := json.Marshal(r.Evaluation)
	if err != nil {
		return fmt.Errorf("resultstore: marshal evaluation: %w", err)
	}

	const q = `
        INSERT INTO evaluation_results (created_at, speaker, transcript, strategy, score, detail)
        VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = s.pool.Exec(ctx, q,
		r.Timestamp, r.Speaker, r.Transcript,
		r.Evaluation.Strategy, r.Evaluation.Score, detail)
	if err != nil {
		return fmt.Errorf("resultstore: insert: %w", err)
	}
	return nil
}

// RecentScores returns the newest overall scores for a speaker, most recent
// first, capped at limit.
func (s *PostgresStore) RecentScores(ctx context.Context, speaker string, limit int) ([]float64, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
        SELECT score FROM evaluation_results
        WHERE speaker = $1
        ORDER BY created_at DESC
        LIMIT $2`
	rows, err := s.pool.Query(ctx, q, speaker, limit)
	if err != nil {
		return nil, fmt.Errorf("resultstore: query scores: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("resultstore: scan score: %w", err)
		}
		scores = append(scores, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resultstore: iterate scores: %w", err)
	}
	return scores, nil
}

// Close releases all connections held by the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
