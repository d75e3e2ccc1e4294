package sampler

import (
	"math"

	"github.com/pkg/errors"
)

// Snapshot is everything needed to pick a run back up later.
type Snapshot[T Real] struct {
	State    []T   `json:"state"`
	Density  T     `json:"density"`
	LogScale []T   `json:"logScale"`
	Accepted []int `json:"accepted"`
	Batches  int   `json:"batches"`
	Sweeps   int64 `json:"sweeps"`
	Chain    [][]T `json:"chain"`
}

// Snapshot captures the current sampler state. The result shares nothing
// with the sampler.
func (s *AMWG[T]) Snapshot() *Snapshot[T] {
	return &Snapshot[T]{
		State:    s.State(),
		Density:  s.density,
		LogScale: s.LogScales(),
		Accepted: s.AcceptanceCounts(),
		Batches:  s.steps.batches,
		Sweeps:   s.sweeps,
		Chain:    s.chain.Rows(),
	}
}

// Restore replaces the sampler state with snap. Worker random streams are
// reseeded from (seed, slot, sweeps), so a restored run is reproducible but
// does not continue the exact stream of the run that was saved.
func (s *AMWG[T]) Restore(snap *Snapshot[T]) error {
	if s.closed {
		return ErrClosed
	}
	if snap == nil {
		return errors.New("Nil snapshot")
	}

	dim := len(s.state)
	if len(snap.State) != dim || len(snap.LogScale) != dim || len(snap.Accepted) != dim {
		return errors.Errorf("Snapshot dimensions (%d, %d, %d) do not match sampler dim %d",
			len(snap.State), len(snap.LogScale), len(snap.Accepted), dim)
	}
	if d := float64(snap.Density); math.IsNaN(d) || math.IsInf(d, 0) {
		return errors.Wrapf(ErrStartDensity, "snapshot density=%v", d)
	}
	for i, n := range snap.Accepted {
		if n < 0 || n > s.settings.BatchSize {
			return errors.Errorf("Snapshot acceptance count %d for dim %d is outside [0, %d]", n, i, s.settings.BatchSize)
		}
	}
	if snap.Sweeps < 0 || snap.Batches < 0 {
		return errors.Errorf("Snapshot counters must be >= 0 (sweeps=%d, batches=%d)", snap.Sweeps, snap.Batches)
	}

	if err := s.chain.replace(snap.Chain); err != nil {
		return errors.Wrap(err, "Could not restore chain")
	}

	copy(s.state, snap.State)
	copy(s.steps.logScale, snap.LogScale)
	copy(s.steps.accepted, snap.Accepted)
	s.density = snap.Density
	s.steps.batches = snap.Batches
	s.sweeps = snap.Sweeps

	for _, w := range s.workers {
		fresh, err := newWorker[T](w.slot, dim, s.settings.Seed, uint64(snap.Sweeps))
		if err != nil {
			return errors.Wrap(err, "Could not reseed workers")
		}
		w.gen = fresh.gen
	}

	log.Debugf("Restored snapshot: sweeps=%d batches=%d chain=%d", s.sweeps, s.steps.batches, s.chain.Len())
	return nil
}
