package rand

import (
	gorand "math/rand"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// DefaultSeed matches the reference seed of the Mersenne twister.
const DefaultSeed int64 = 5489

// A Generator is a Mersenne twister with the handful of helpers the samplers
// need. A Generator is NOT safe for concurrent use: each goroutine that needs
// random numbers should own one.
type Generator struct {
	src  *mt19937.MT19937
	norm *gorand.Rand // only used for NormFloat64
}

// NewGenerator returns a new PRNG based on the given seed
func NewGenerator(seed int64) (*Generator, error) {
	src := mt19937.New()
	src.Seed(seed)
	return newGenerator(src), nil
}

// NewGeneratorSlice seeds the generator with the init_by_array method from
// the reference MT19937-64 implementation. An empty key is an error.
func NewGeneratorSlice(key []uint64) (*Generator, error) {
	if len(key) < 1 {
		return nil, errors.New("Seed slice must have at least one value")
	}

	src := mt19937.New()
	src.SeedFromSlice(key)
	return newGenerator(src), nil
}

// ForWorker returns the generator for a worker slot. Every (seed, slot, extra)
// tuple gives an independent, reproducible stream.
func ForWorker(seed int64, slot int, extra ...uint64) (*Generator, error) {
	if slot < 0 {
		return nil, errors.Errorf("Invalid worker slot %d", slot)
	}

	key := make([]uint64, 0, 2+len(extra))
	key = append(key, uint64(seed), uint64(slot))
	key = append(key, extra...)
	return NewGeneratorSlice(key)
}

func newGenerator(src *mt19937.MT19937) *Generator {
	return &Generator{
		src:  src,
		norm: gorand.New(src),
	}
}

// Int63 provides the same interface as Go's math/rand
func (g *Generator) Int63() int64 {
	return g.src.Int63()
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Float64 returns a value in [0, 1). We use the simpler implementation from
// the Go lang comments for Rand Float64 since we don't have the same support
// requirements.
func (g *Generator) Float64() float64 {
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// NormFloat64 returns a standard normal variate (mean 0, stddev 1). It uses
// the ziggurat method from math/rand driven by our twister.
func (g *Generator) NormFloat64() float64 {
	return g.norm.NormFloat64()
}
