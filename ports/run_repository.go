package ports

import (
	"context"
	"time"
)

// RunRecord is the durable summary of one completed test run. The full
// permutation distribution is not persisted; it is returned to the caller
// and discarded once p-values are computed.
type RunRecord struct {
	RunID      string    `db:"run_id" json:"run_id"`
	Method     string    `db:"method" json:"method"`
	Statistic  string    `db:"statistic" json:"statistic"`
	TailMode   string    `db:"tail_mode" json:"tail_mode"`
	Observed   float64   `db:"observed" json:"observed"`
	Draws      int       `db:"draws" json:"draws"`
	Seed       int64     `db:"seed" json:"seed"`
	SampleSize int       `db:"sample_size" json:"sample_size"`
	PValue     float64   `db:"p_value" json:"p_value"`
	PUpper     float64   `db:"p_upper" json:"p_upper"`
	PDoubled   float64   `db:"p_doubled" json:"p_doubled"`
	PBothTails float64   `db:"p_both_tails" json:"p_both_tails"`
	NullMean   float64   `db:"null_mean" json:"null_mean"`
	NullStdDev float64   `db:"null_std_dev" json:"null_std_dev"`
	NullMin    float64   `db:"null_min" json:"null_min"`
	NullMax    float64   `db:"null_max" json:"null_max"`
	NullP95    float64   `db:"null_p95" json:"null_p95"`
	NullP99    float64   `db:"null_p99" json:"null_p99"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RunRepository persists completed test runs
type RunRepository interface {
	SaveRun(ctx context.Context, record RunRecord) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
