// Package sampler implements an Adaptive Metropolis-within-Gibbs (AMWG)
// sampler. Each sweep updates one dimension at a time; every worker draws an
// independent Gaussian candidate for the active dimension and the first
// accepting worker (by slot order) wins. Per-dimension proposal scales are
// tuned toward a 0.44 acceptance rate after every batch of sweeps.
package sampler

import (
	"runtime"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/rand"
)

var log = logging.MustGetLogger("sampler")

// Real is the numeric type a sampler works in.
type Real interface {
	~float32 | ~float64
}

// Posterior returns the natural-log unnormalized posterior density of params.
// It is called concurrently from every worker, each with its own params
// slice, and must not keep a reference to that slice. Points outside the
// support should return -Inf (any non-finite value is a rejection).
type Posterior[T Real] func(params []T) T

// A Sampler draws a chain of parameter vectors from a posterior.
type Sampler[T Real] interface {
	Burn(n int) error
	Sample(n int) error
	Chain() *Chain[T]
	PosteriorDensity() T
	Close() error
}

// Tunables that are fixed by the algorithm
const (
	DefaultBatchSize = 50
	TargetAcceptRate = 0.44 // optimal for 1-D random walk Metropolis
	MaxAdaptStep     = 0.01 // upper bound on a single log-scale change
)

// Errors returned by the sampler
var (
	ErrNoDimensions   = errors.New("Start vector must have at least one dimension")
	ErrNilPosterior   = errors.New("No posterior density function supplied")
	ErrStartDensity   = errors.New("Posterior density at the start vector is not finite")
	ErrBadBatchSize   = errors.New("Batch size must be > 0")
	ErrBadWorkerCount = errors.New("Worker count must be > 0")
	ErrClosed         = errors.New("Sampler has been closed")
	ErrPosteriorPanic = errors.New("Posterior density function panicked")
)

// Settings are fixed at construction.
type Settings struct {
	// BatchSize is the number of sweeps between step size adaptations.
	BatchSize int
	// Workers is the number of candidate proposals drawn per dimension
	// update, one per worker goroutine.
	Workers int
	// Seed for the worker random streams.
	Seed int64
}

// DefaultSettings returns the settings we use when none are given.
func DefaultSettings() *Settings {
	return &Settings{
		BatchSize: DefaultBatchSize,
		Workers:   runtime.NumCPU(),
		Seed:      rand.DefaultSeed,
	}
}

// Check returns an error if the settings can not be used.
func (s *Settings) Check() error {
	if s.BatchSize < 1 {
		return errors.Wrapf(ErrBadBatchSize, "got %d", s.BatchSize)
	}
	if s.Workers < 1 {
		return errors.Wrapf(ErrBadWorkerCount, "got %d", s.Workers)
	}
	return nil
}
