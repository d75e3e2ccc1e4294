package sampler

import (
	"math"
)

// stepController owns the per-dimension log proposal scales and acceptance
// counts. Only the controller goroutine mutates it, and only between rounds.
// Workers read logScale during a round.
type stepController[T Real] struct {
	batchSize int
	batches   int
	logScale  []T
	accepted  []int
}

func newStepController[T Real](dim int, batchSize int) *stepController[T] {
	return &stepController[T]{
		batchSize: batchSize,
		logScale:  make([]T, dim),
		accepted:  make([]int, dim),
	}
}

// accept counts an accepted proposal for dimension i
func (c *stepController[T]) accept(i int) {
	c.accepted[i]++
}

// stepSize is the log-scale change for the current batch index. It shrinks
// as 1/sqrt(batches) once that drops below MaxAdaptStep.
func (c *stepController[T]) stepSize() float64 {
	return math.Min(MaxAdaptStep, 1.0/math.Sqrt(float64(c.batches)))
}

// adapt closes a batch: every dimension moves its log scale up if it
// accepted at least the target rate, down otherwise, and its count resets.
func (c *stepController[T]) adapt() {
	c.batches++
	delta := T(c.stepSize())

	for i, n := range c.accepted {
		frac := float64(n) / float64(c.batchSize)
		if frac >= TargetAcceptRate {
			c.logScale[i] += delta
		} else {
			c.logScale[i] -= delta
		}
		c.accepted[i] = 0
	}

	log.Debugf("Batch %d adapted (step %.5f): log scales %v", c.batches, float64(delta), c.logScale)
}
