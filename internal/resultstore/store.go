// Package resultstore persists evaluation outcomes for later review.
//
// Two implementations are provided: an append-only JSON-lines [FileStore]
// for single-user and development setups, and a PostgreSQL-backed
// [PostgresStore] for deployments that accumulate results across learners.
package resultstore

import (
	"context"
	"time"

	"github.com/accentis/accentis/internal/eval"
)

// Result is one persisted evaluation outcome.
type Result struct {
	Timestamp  time.Time        `json:"timestamp"`
	Speaker    string           `json:"speaker,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Evaluation *eval.Evaluation `json:"evaluation"`
}

// Store persists evaluation results.
type Store interface {
	Save(ctx context.Context, r Result) error
}
