// Package dataset persists completed actions to PostgreSQL as training
// data. It is the dataset-capture hook of the execution controller, fired
// only when dataset building is enabled.
package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/visor-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DBPool abstracts the pgxpool.Pool so the recorder can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Recorder writes one row per recorded action.
type Recorder struct {
	pool  DBPool
	table string
	log   *zap.Logger
}

// New creates a recorder and verifies the database connection.
func New(ctx context.Context, pool DBPool, table string, logger *zap.Logger) (*Recorder, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool cannot be nil")
	}
	if table == "" {
		table = "action_records"
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Recorder{
		pool:  pool,
		table: table,
		log:   logger.Named("dataset"),
	}, nil
}

// EnsureSchema creates the record table when it does not exist yet.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			description TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			matches JSONB NOT NULL,
			completed_sequences INT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			duration_ms BIGINT NOT NULL
		);`, r.table))
	if err != nil {
		return fmt.Errorf("failed to ensure dataset schema: %w", err)
	}
	return nil
}

// RecordAction implements the execution.DatasetRecorder hook.
func (r *Recorder) RecordAction(ctx context.Context, res *schemas.ActionResult) error {
	matches, err := json.Marshal(res.Matches)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	if len(matches) == 0 || string(matches) == "null" {
		matches = []byte("[]")
	}

	_, err = r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (description, success, matches, completed_sequences, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6);`, r.table),
		res.Description,
		res.Success,
		matches,
		res.CompletedSequences,
		res.StartTime.UTC(),
		res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action record: %w", err)
	}
	r.log.Debug("Recorded action", zap.String("description", res.Description), zap.Bool("success", res.Success))
	return nil
}
