// Package stats has the density helpers and chain summaries used by the
// models built on the sampler. Densities are returned on the log scale.
package stats

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMass is the probability mass covered by HDI when none is given.
const DefaultMass = 0.95

// NormalLogPDF is the log density of Normal(mean, sd) at x.
func NormalLogPDF(x, mean, sd float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: sd}.LogProb(x)
}

// StudentTLogPDF is the log density at x of a Student-t with nu degrees of
// freedom, shifted to mu and scaled by sigma.
func StudentTLogPDF(x, mu, sigma, nu float64) float64 {
	return distuv.StudentsT{Mu: mu, Sigma: sigma, Nu: nu}.LogProb(x)
}

// ExponentialLogPDF is the log density of Exponential(rate) at x. It is -Inf
// for x < 0.
func ExponentialLogPDF(x, rate float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	return distuv.Exponential{Rate: rate}.LogProb(x)
}

// UniformLogPDF is the log density of Uniform(a, b) at x. It is -Inf outside
// [a, b].
func UniformLogPDF(x, a, b float64) float64 {
	if x < a || x > b {
		return math.Inf(-1)
	}
	return distuv.Uniform{Min: a, Max: b}.LogProb(x)
}

// Mean of x. Returns NaN for an empty slice.
func Mean(x []float64) float64 {
	if len(x) < 1 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

// StdDev is the population (divide by n) standard deviation of x.
func StdDev(x []float64) float64 {
	if len(x) < 1 {
		return math.NaN()
	}
	_, sd := stat.PopMeanStdDev(x, nil)
	return sd
}

// Interval is a closed [Low, High] range.
type Interval struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Width is High - Low
func (i Interval) Width() float64 {
	return i.High - i.Low
}

// Contains is true if x is in the interval
func (i Interval) Contains(x float64) bool {
	return x >= i.Low && x <= i.High
}

// HDI returns the narrowest interval holding floor(mass * n) + 1 consecutive
// sorted samples of x: the highest density interval for a unimodal sample.
// x is not modified.
func HDI(x []float64, mass float64) (Interval, error) {
	if len(x) < 2 {
		return Interval{}, errors.Errorf("HDI needs at least 2 values, got %d", len(x))
	}
	if mass <= 0 || mass >= 1 {
		return Interval{}, errors.Errorf("HDI mass must be in (0, 1), got %v", mass)
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	span := int(math.Floor(float64(len(sorted)) * mass))
	best := Interval{Low: sorted[0], High: sorted[len(sorted)-1]}

	for i := 0; i+span < len(sorted); i++ {
		cand := Interval{Low: sorted[i], High: sorted[i+span]}
		if cand.Width() < best.Width() {
			best = cand
		}
	}

	return best, nil
}
