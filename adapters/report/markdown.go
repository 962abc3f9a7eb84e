package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/montanaflynn/stats"

	"gopermute/domain/permutation"
	"gopermute/internal/errors"
	"gopermute/ports"
)

const histogramBins = 12
const histogramWidth = 40

// Generator renders a completed run as a markdown report with a text
// histogram of the null distribution. It consumes the distribution and the
// run record; it never touches the engine.
type Generator struct{}

// NewGenerator creates a report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Markdown renders the run report
func (g *Generator) Markdown(record ports.RunRecord, dist permutation.Distribution) (string, error) {
	if len(dist) == 0 {
		return "", errors.InvalidInput("permutation distribution is empty")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Permutation test run %s\n\n", record.RunID)

	fmt.Fprintf(&b, "| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Method | %s |\n", record.Method)
	fmt.Fprintf(&b, "| Statistic | %s |\n", record.Statistic)
	fmt.Fprintf(&b, "| Tail mode | %s |\n", record.TailMode)
	fmt.Fprintf(&b, "| Sample size | %d |\n", record.SampleSize)
	fmt.Fprintf(&b, "| Assignments evaluated | %d |\n", record.Draws)
	if record.Method == "monte_carlo" {
		fmt.Fprintf(&b, "| Seed | %d |\n", record.Seed)
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Results\n\n")
	fmt.Fprintf(&b, "| Quantity | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Observed statistic | %.6g |\n", record.Observed)
	fmt.Fprintf(&b, "| p (selected: %s) | %.6g |\n", record.TailMode, record.PValue)
	fmt.Fprintf(&b, "| p one-tailed upper | %.6g |\n", record.PUpper)
	fmt.Fprintf(&b, "| p two-sided doubled | %.6g |\n", record.PDoubled)
	fmt.Fprintf(&b, "| p two-sided both tails | %.6g |\n", record.PBothTails)
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Null distribution\n\n")
	fmt.Fprintf(&b, "| Summary | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Mean | %.6g |\n", record.NullMean)
	fmt.Fprintf(&b, "| Std dev | %.6g |\n", record.NullStdDev)
	fmt.Fprintf(&b, "| Min | %.6g |\n", record.NullMin)
	fmt.Fprintf(&b, "| Max | %.6g |\n", record.NullMax)
	fmt.Fprintf(&b, "| P95 | %.6g |\n", record.NullP95)
	fmt.Fprintf(&b, "| P99 | %.6g |\n", record.NullP99)
	fmt.Fprintf(&b, "\n```\n%s```\n", g.histogram(dist))

	return b.String(), nil
}

// HTML renders the run report as HTML
func (g *Generator) HTML(record ports.RunRecord, dist permutation.Distribution) ([]byte, error) {
	md, err := g.Markdown(record, dist)
	if err != nil {
		return nil, err
	}
	return markdown.ToHTML([]byte(md), nil, nil), nil
}

// histogram renders the distribution as fixed-width text bars
func (g *Generator) histogram(dist permutation.Distribution) string {
	data := []float64(dist)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)

	counts := make([]int, histogramBins)
	width := (hi - lo) / float64(histogramBins)
	for _, v := range data {
		bin := 0
		if width > 0 {
			bin = int((v - lo) / width)
			if bin >= histogramBins {
				bin = histogramBins - 1
			}
		}
		counts[bin]++
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	var b strings.Builder
	for i, c := range counts {
		barLen := 0
		if maxCount > 0 {
			barLen = c * histogramWidth / maxCount
		}
		fmt.Fprintf(&b, "%10.4g .. %10.4g | %-*s %d\n",
			lo+float64(i)*width, lo+float64(i+1)*width,
			histogramWidth, strings.Repeat("#", barLen), c)
	}
	return b.String()
}
