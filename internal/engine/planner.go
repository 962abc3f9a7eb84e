package engine

import (
	"math"

	"gopermute/internal/errors"
)

// RequiredDraws estimates the Monte Carlo draw count needed to keep the
// coefficient of variation of a p-value estimate near p at or below cv,
// using n ≈ (1-p)/(p·cv²). The approximation treats the tail count as
// binomial and is accurate for small p.
func RequiredDraws(p, cv float64) (int, error) {
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return 0, errors.InvalidInputf("target p-value must be in (0,1), got %g", p)
	}
	if cv <= 0 || math.IsNaN(cv) {
		return 0, errors.InvalidInputf("coefficient of variation must be positive, got %g", cv)
	}
	n := (1 - p) / (p * cv * cv)
	// Tolerate float slop so exact quotients (e.g. 7600) are not bumped up.
	return int(math.Ceil(n - 1e-9)), nil
}
