package sampler

import (
	"math"

	"github.com/CraigKelly/amwg/rand"
)

// propose draws from a Gaussian centered on current with standard deviation
// exp(logScale).
func propose[T Real](gen *rand.Generator, current T, logScale T) T {
	sd := math.Exp(float64(logScale))
	return current + T(gen.NormFloat64()*sd)
}

// evaluate scores candidate and applies the Metropolis rule in log space:
// accept with probability min(1, exp(proposed - current)). A non-finite
// proposed density is rejected without drawing the uniform.
func evaluate[T Real](gen *rand.Generator, posterior Posterior[T], candidate []T, current T) (T, bool) {
	proposed := posterior(candidate)

	p := float64(proposed)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return proposed, false
	}

	u := gen.Float64()
	return proposed, u < math.Exp(p-float64(current))
}
