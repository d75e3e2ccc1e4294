package sampler

import (
	"github.com/pkg/errors"
)

// Chain is the append-only list of sampled parameter vectors. Samples are
// stored back to back in one slice so a sweep costs no allocation beyond
// occasional growth.
type Chain[T Real] struct {
	dim  int
	data []T
}

func newChain[T Real](dim int) *Chain[T] {
	return &Chain[T]{dim: dim}
}

// Len is the number of samples in the chain.
func (c *Chain[T]) Len() int {
	return len(c.data) / c.dim
}

// Dim is the length of each sample.
func (c *Chain[T]) Dim() int {
	return c.dim
}

// At returns sample k. The returned slice is a view into the chain and must
// not be modified.
func (c *Chain[T]) At(k int) []T {
	lo, hi := k*c.dim, (k+1)*c.dim
	return c.data[lo:hi:hi]
}

// Column returns a copy of parameter j across every sample.
func (c *Chain[T]) Column(j int) ([]T, error) {
	if j < 0 || j >= c.dim {
		return nil, errors.Errorf("Invalid parameter index %d for dim %d", j, c.dim)
	}

	n := c.Len()
	col := make([]T, n)
	for k := 0; k < n; k++ {
		col[k] = c.data[k*c.dim+j]
	}
	return col, nil
}

// Rows returns a deep copy of the chain, one slice per sample.
func (c *Chain[T]) Rows() [][]T {
	n := c.Len()
	rows := make([][]T, n)
	for k := range rows {
		rows[k] = append([]T(nil), c.At(k)...)
	}
	return rows
}

func (c *Chain[T]) append(v []T) {
	c.data = append(c.data, v...)
}

// reserve grows capacity for n more samples.
func (c *Chain[T]) reserve(n int) {
	need := len(c.data) + n*c.dim
	if need <= cap(c.data) {
		return
	}
	grown := make([]T, len(c.data), need)
	copy(grown, c.data)
	c.data = grown
}

// replace swaps in rows (from a snapshot). Each row must have length dim.
func (c *Chain[T]) replace(rows [][]T) error {
	data := make([]T, 0, len(rows)*c.dim)
	for k, r := range rows {
		if len(r) != c.dim {
			return errors.Errorf("Chain row %d has %d values, expected %d", k, len(r), c.dim)
		}
		data = append(data, r...)
	}
	c.data = data
	return nil
}
