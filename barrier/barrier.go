// Package barrier provides a reusable, generation-counted barrier for one
// controller and a fixed set of workers.
//
// A round goes like this: the controller calls Advance, which bumps the round
// id and wakes every worker blocked in Wait. Each worker does its work and
// calls Arrive. The controller blocks in AwaitAll until all parties have
// arrived. Close publishes the terminal round and wakes every worker one last
// time so they can exit.
//
// Every mutation of the round id and arrival count happens under one mutex,
// so anything the controller writes before Advance is visible to a worker
// after Wait returns, and anything a worker writes before Arrive is visible to
// the controller after AwaitAll returns. Round and Arrived may be read without
// the lock (they are atomics) but are only advisory there.
package barrier

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Terminal is the round id published by Close.
const Terminal = uint64(math.MaxUint64)

// Barrier is the epoch barrier. The zero value is not usable: see New.
type Barrier struct {
	parties int

	mu      sync.Mutex
	start   *sync.Cond // workers wait here for a new round
	finish  *sync.Cond // controller waits here for arrivals
	round   atomic.Uint64
	arrived atomic.Int64
	closed  atomic.Bool
}

// New creates a barrier for the given number of workers.
func New(parties int) (*Barrier, error) {
	if parties < 1 {
		return nil, errors.Errorf("Barrier needs at least one party, got %d", parties)
	}

	b := &Barrier{parties: parties}
	b.start = sync.NewCond(&b.mu)
	b.finish = sync.NewCond(&b.mu)
	return b, nil
}

// Parties is the number of workers that must arrive to complete a round.
func (b *Barrier) Parties() int {
	return b.parties
}

// Round returns the current round id (Terminal once closed).
func (b *Barrier) Round() uint64 {
	return b.round.Load()
}

// Arrived returns how many workers have arrived in the current round.
func (b *Barrier) Arrived() int {
	return int(b.arrived.Load())
}

// Closed is true once Close has been called.
func (b *Barrier) Closed() bool {
	return b.closed.Load()
}

// Advance opens a new round and wakes all workers. It returns the new round
// id. Only the controller may call Advance, and only after the previous
// round's AwaitAll has returned.
func (b *Barrier) Advance() (uint64, error) {
	b.mu.Lock()
	if b.closed.Load() {
		b.mu.Unlock()
		return Terminal, errors.New("Barrier is closed")
	}
	b.arrived.Store(0)
	r := b.round.Add(1)
	if r == Terminal {
		b.mu.Unlock()
		return Terminal, errors.New("Barrier round counter exhausted")
	}
	b.mu.Unlock()

	b.start.Broadcast()
	return r, nil
}

// Wait blocks until the round id moves past seen. It returns the new round
// id and true, or Terminal and false once the barrier is closed. Spurious
// wakeups are absorbed here.
func (b *Barrier) Wait(seen uint64) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.closed.Load() && b.round.Load() == seen {
		b.start.Wait()
	}
	if b.closed.Load() {
		return Terminal, false
	}
	return b.round.Load(), true
}

// Arrive records that one worker finished the current round.
func (b *Barrier) Arrive() {
	b.mu.Lock()
	n := b.arrived.Add(1)
	b.mu.Unlock()

	if int(n) >= b.parties {
		b.finish.Signal()
	}
}

// AwaitAll blocks the controller until every party has arrived in the
// current round.
func (b *Barrier) AwaitAll() {
	b.mu.Lock()
	for int(b.arrived.Load()) < b.parties {
		b.finish.Wait()
	}
	b.mu.Unlock()
}

// Close publishes the terminal round and wakes all workers so they can see
// it. Calling Close more than once is harmless.
func (b *Barrier) Close() {
	b.mu.Lock()
	b.closed.Store(true)
	b.round.Store(Terminal)
	b.mu.Unlock()

	b.start.Broadcast()
}
