package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopermute/domain/permutation"
	"gopermute/ports"
)

func sampleRecord() ports.RunRecord {
	return ports.RunRecord{
		RunID:      "run-123",
		Method:     "exact",
		Statistic:  "mean_difference",
		TailMode:   "two_sided_both_tails",
		Observed:   3.75,
		Draws:      210,
		SampleSize: 10,
		PValue:     8.0 / 210.0,
		PUpper:     5.0 / 210.0,
		PDoubled:   10.0 / 210.0,
		PBothTails: 8.0 / 210.0,
		NullMean:   0.01,
		NullStdDev: 1.9,
		NullMin:    -4.4,
		NullMax:    3.9,
		NullP95:    3.3,
		NullP99:    3.75,
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	dist := permutation.Distribution{-3, -2, -1, 0, 0, 1, 2, 3, 3.75}

	md, err := NewGenerator().Markdown(sampleRecord(), dist)
	require.NoError(t, err)

	assert.Contains(t, md, "# Permutation test run run-123")
	assert.Contains(t, md, "| Method | exact |")
	assert.Contains(t, md, "| Statistic | mean_difference |")
	assert.Contains(t, md, "| Assignments evaluated | 210 |")
	assert.Contains(t, md, "| Observed statistic | 3.75 |")
	assert.Contains(t, md, "p two-sided both tails")
	assert.Contains(t, md, "## Null distribution")
	assert.Contains(t, md, "```")
	assert.Contains(t, md, "#")

	// Exact runs carry no seed row
	assert.NotContains(t, md, "| Seed |")
}

func TestMarkdown_MonteCarloIncludesSeed(t *testing.T) {
	record := sampleRecord()
	record.Method = "monte_carlo"
	record.Seed = 42
	dist := permutation.Distribution{-1, 0, 1}

	md, err := NewGenerator().Markdown(record, dist)
	require.NoError(t, err)
	assert.Contains(t, md, "| Seed | 42 |")
}

func TestMarkdown_EmptyDistribution(t *testing.T) {
	_, err := NewGenerator().Markdown(sampleRecord(), permutation.Distribution{})
	require.Error(t, err)
}

func TestHTML(t *testing.T) {
	dist := permutation.Distribution{-1, 0, 1, 2}

	html, err := NewGenerator().HTML(sampleRecord(), dist)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1")
	assert.Contains(t, string(html), "run-123")
	assert.Contains(t, string(html), "<table>")
}

func TestHistogram_ConstantDistribution(t *testing.T) {
	// Zero-width range must not panic or divide by zero
	dist := permutation.Distribution{2, 2, 2, 2}

	md, err := NewGenerator().Markdown(sampleRecord(), dist)
	require.NoError(t, err)
	assert.Contains(t, md, "4")
}
