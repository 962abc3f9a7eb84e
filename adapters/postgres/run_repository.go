package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"gopermute/internal/errors"
	"gopermute/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS permutation_runs (
	run_id       TEXT PRIMARY KEY,
	method       TEXT NOT NULL,
	statistic    TEXT NOT NULL,
	tail_mode    TEXT NOT NULL,
	observed     DOUBLE PRECISION NOT NULL,
	draws        INTEGER NOT NULL,
	seed         BIGINT NOT NULL,
	sample_size  INTEGER NOT NULL,
	p_value      DOUBLE PRECISION NOT NULL,
	p_upper      DOUBLE PRECISION NOT NULL,
	p_doubled    DOUBLE PRECISION NOT NULL,
	p_both_tails DOUBLE PRECISION NOT NULL,
	null_mean    DOUBLE PRECISION NOT NULL,
	null_std_dev DOUBLE PRECISION NOT NULL,
	null_min     DOUBLE PRECISION NOT NULL,
	null_max     DOUBLE PRECISION NOT NULL,
	null_p95     DOUBLE PRECISION NOT NULL,
	null_p99     DOUBLE PRECISION NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the runs table if it does not exist
func (r *RunRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to ensure runs schema"))
	}
	return nil
}

// SaveRun persists one completed test run
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, record ports.RunRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO permutation_runs (
			run_id, method, statistic, tail_mode, observed, draws, seed, sample_size,
			p_value, p_upper, p_doubled, p_both_tails,
			null_mean, null_std_dev, null_min, null_max, null_p95, null_p99, created_at
		) VALUES (
			:run_id, :method, :statistic, :tail_mode, :observed, :draws, :seed, :sample_size,
			:p_value, :p_upper, :p_doubled, :p_both_tails,
			:null_mean, :null_std_dev, :null_min, :null_max, :null_p95, :null_p99, :created_at
		)
	`, record)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to save run %s", record.RunID))
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, runID string) (*ports.RunRecord, error) {
	var record ports.RunRecord
	err := r.db.GetContext(ctx, &record, `
		SELECT * FROM permutation_runs WHERE run_id = $1
	`, runID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run " + runID)
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to load run %s", runID))
	}
	return &record, nil
}

// ListRuns returns the most recent runs
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	var records []ports.RunRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM permutation_runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list runs"))
	}
	return records, nil
}
