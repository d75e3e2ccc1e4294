package sampler

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/barrier"
)

// AMWG is the adaptive Metropolis-within-Gibbs sampler. All exported methods
// must be called from a single goroutine (the controller); the worker
// goroutines are internal.
//
// Shared with workers, and only written while no round is open: state,
// density, active and steps. The barrier orders every controller write
// before the next round's worker reads (Advance/Wait) and every worker's
// result write before the controller scans it (Arrive/AwaitAll).
type AMWG[T Real] struct {
	posterior Posterior[T]
	settings  Settings

	state   []T
	density T
	active  int
	steps   *stepController[T]

	chain  *Chain[T]
	sweeps int64

	bar     *barrier.Barrier
	workers []*worker[T]
	wg      sync.WaitGroup
	closed  bool
}

// NewAMWG validates its inputs, evaluates the density at start, and spins up
// one goroutine per worker. A nil set means DefaultSettings. Close must be
// called to stop the workers.
func NewAMWG[T Real](start []T, posterior Posterior[T], set *Settings) (*AMWG[T], error) {
	if set == nil {
		set = DefaultSettings()
	}
	if err := set.Check(); err != nil {
		return nil, err
	}
	if len(start) < 1 {
		return nil, ErrNoDimensions
	}
	if posterior == nil {
		return nil, ErrNilPosterior
	}

	dim := len(start)
	s := &AMWG[T]{
		posterior: posterior,
		settings:  *set,
		state:     make([]T, dim),
		steps:     newStepController[T](dim, set.BatchSize),
		chain:     newChain[T](dim),
	}
	copy(s.state, start)

	s.density = posterior(append([]T(nil), s.state...))
	if d := float64(s.density); math.IsNaN(d) || math.IsInf(d, 0) {
		return nil, errors.Wrapf(ErrStartDensity, "density=%v at %v", d, start)
	}

	bar, err := newBarrier(set.Workers)
	if err != nil {
		return nil, err
	}
	s.bar = bar

	s.workers = make([]*worker[T], set.Workers)
	for slot := range s.workers {
		w, err := newWorker[T](slot, dim, set.Seed)
		if err != nil {
			return nil, errors.Wrap(err, "Could not create sampler worker pool")
		}
		s.workers[slot] = w
	}

	for _, w := range s.workers {
		s.wg.Add(1)
		go w.run(s)
	}

	log.Debugf("AMWG started: dim=%d workers=%d batch=%d seed=%d density=%v",
		dim, set.Workers, set.BatchSize, set.Seed, s.density)

	return s, nil
}

func newBarrier(workers int) (*barrier.Barrier, error) {
	bar, err := barrier.New(workers)
	if err != nil {
		return nil, errors.Wrap(err, "Could not create worker barrier")
	}
	return bar, nil
}

// NextSample appends the current state to the chain and then sweeps every
// dimension once. It returns the number of posterior evaluations the workers
// performed. An error means a worker's posterior call panicked; the sweep
// still finishes with that worker's candidate treated as a rejection.
func (s *AMWG[T]) NextSample() (int, error) {
	return s.sweep(true)
}

// sweep runs one full pass over the dimensions. With record false nothing is
// added to the chain (burn-in) but everything else evolves the same way.
func (s *AMWG[T]) sweep(record bool) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}

	if record {
		s.chain.append(s.state)
	}

	evals := 0
	var firstErr error

	for i := range s.state {
		s.active = i
		if _, err := s.bar.Advance(); err != nil {
			return evals, errors.Wrapf(err, "Could not dispatch dimension %d", i)
		}
		s.bar.AwaitAll()
		evals += len(s.workers)

		for _, w := range s.workers {
			r := &w.result
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
				}
				continue
			}
			if r.accepted {
				s.state[i] = r.value
				s.density = r.density
				s.steps.accept(i)
				break
			}
		}
	}

	s.sweeps++
	if s.sweeps%int64(s.settings.BatchSize) == 0 {
		s.steps.adapt()
	}

	return evals, firstErr
}

// Sample performs n sweeps, adding n states to the chain.
func (s *AMWG[T]) Sample(n int) error {
	if n < 0 {
		return errors.Errorf("Invalid sample count %d", n)
	}

	log.Debugf("Sampling %d (chain length %d)", n, s.chain.Len())
	s.chain.reserve(n)
	return s.run(n, true)
}

// Burn performs n sweeps and keeps none of them: the chain is exactly what
// it was before the call, but the state, density, step sizes and acceptance
// counts carry the burn-in forward.
func (s *AMWG[T]) Burn(n int) error {
	if n < 0 {
		return errors.Errorf("Invalid burn-in count %d", n)
	}

	log.Debugf("Burn-in for %d", n)
	return s.run(n, false)
}

func (s *AMWG[T]) run(n int, record bool) error {
	for i := 0; i < n; i++ {
		if _, err := s.sweep(record); err != nil {
			return errors.Wrapf(err, "Failure on sweep %d of %d", i+1, n)
		}
	}
	return nil
}

// Close stops and joins the workers. It is safe to call more than once.
func (s *AMWG[T]) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.bar.Close()
	s.wg.Wait()

	log.Debugf("AMWG closed after %d sweeps", s.sweeps)
	return nil
}

// Chain returns the samples collected so far.
func (s *AMWG[T]) Chain() *Chain[T] {
	return s.chain
}

// PosteriorDensity is the log density of the current state.
func (s *AMWG[T]) PosteriorDensity() T {
	return s.density
}

// State returns a copy of the current parameter vector.
func (s *AMWG[T]) State() []T {
	return append([]T(nil), s.state...)
}

// LogScales returns a copy of the per-dimension log proposal scales.
func (s *AMWG[T]) LogScales() []T {
	return append([]T(nil), s.steps.logScale...)
}

// AcceptanceCounts returns a copy of the acceptance counts for the current
// batch.
func (s *AMWG[T]) AcceptanceCounts() []int {
	return append([]int(nil), s.steps.accepted...)
}

// Batches is the number of completed adaptation batches.
func (s *AMWG[T]) Batches() int {
	return s.steps.batches
}

// Sweeps is the number of sweeps run, burn-in included.
func (s *AMWG[T]) Sweeps() int64 {
	return s.sweeps
}

// Dim is the number of parameters.
func (s *AMWG[T]) Dim() int {
	return len(s.state)
}

// Workers is the number of worker goroutines.
func (s *AMWG[T]) Workers() int {
	return len(s.workers)
}

// Settings returns a copy of the construction settings.
func (s *AMWG[T]) Settings() Settings {
	return s.settings
}
