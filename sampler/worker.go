package sampler

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/rand"
)

// result is one worker's answer for the most recently dispatched dimension.
// It is overwritten every round.
type result[T Real] struct {
	value    T
	density  T
	accepted bool
	err      error
}

// worker owns a slot: its random stream, a scratch copy of the state vector
// and its result. Nothing here is shared with other workers.
type worker[T Real] struct {
	slot    int
	gen     *rand.Generator
	scratch []T
	result  result[T]
}

func newWorker[T Real](slot int, dim int, seed int64, extra ...uint64) (*worker[T], error) {
	gen, err := rand.ForWorker(seed, slot, extra...)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not seed worker %d", slot)
	}

	return &worker[T]{
		slot:    slot,
		gen:     gen,
		scratch: make([]T, dim),
	}, nil
}

// run is the worker loop: wait for a round, propose, report, repeat until
// the barrier closes.
func (w *worker[T]) run(s *AMWG[T]) {
	defer s.wg.Done()

	var seen uint64
	for {
		round, ok := s.bar.Wait(seen)
		if !ok {
			log.Debugf("Worker %d exiting", w.slot)
			return
		}
		seen = round

		w.step(s)
		s.bar.Arrive()
	}
}

// step computes one candidate for the active dimension. The shared state,
// density and log scales are only read here: the controller does not touch
// them while a round is open, and Wait/Arrive order our reads after its last
// commit and before its next one.
func (w *worker[T]) step(s *AMWG[T]) {
	defer func() {
		if p := recover(); p != nil {
			w.result = result[T]{err: errors.Wrapf(ErrPosteriorPanic, "worker %d: %v", w.slot, p)}
		}
	}()

	i := s.active
	copy(w.scratch, s.state)

	value := propose(w.gen, s.state[i], s.steps.logScale[i])
	w.scratch[i] = value

	density, accepted := evaluate(w.gen, s.posterior, w.scratch, s.density)
	w.result = result[T]{
		value:    value,
		density:  density,
		accepted: accepted,
	}
}
