package buffer

// Circular is a fixed size ring buffer that can iterate over the older and
// newer halves of what it holds, in the order the values were added.
type Circular[T any] struct {
	buffer    []T   // actual storage
	pos       int   // next write position
	BufSize   int   // BufSize is the fixed number of values kept
	Count     int   // Count is the number of values held, always <= BufSize
	TotalSeen int64 // TotalSeen is the number of times Add has been called
}

// NewCircular creates a buffer of totalSize values. Odd sizes are rounded
// down to even (and anything below 2 becomes 2) so the halves match.
func NewCircular[T any](totalSize int) *Circular[T] {
	half := totalSize / 2
	if half < 1 {
		half = 1
	}
	total := half + half

	return &Circular[T]{
		buffer:  make([]T, total),
		BufSize: total,
	}
}

// Add appends v, overwriting the oldest value when full
func (c *Circular[T]) Add(v T) {
	c.TotalSeen++
	c.buffer[c.pos] = v
	c.pos = (c.pos + 1) % c.BufSize

	if c.Count < c.BufSize {
		c.Count++
	}
}

// Full is true once BufSize values have been added
func (c *Circular[T]) Full() bool {
	return c.Count == c.BufSize
}

// Values returns a copy of the held values, oldest first
func (c *Circular[T]) Values() []T {
	out := make([]T, 0, c.Count)
	start := (c.pos - c.Count + c.BufSize) % c.BufSize
	for i := 0; i < c.Count; i++ {
		out = append(out, c.buffer[(start+i)%c.BufSize])
	}
	return out
}

// FirstHalf iterates over the oldest half of the buffer. It is nil until the
// buffer is full.
func (c *Circular[T]) FirstHalf() *Iterator[T] {
	if !c.Full() {
		return nil
	}

	return &Iterator[T]{
		buf:    c,
		curr:   c.pos, // oldest is the one we're about to overwrite
		remain: c.BufSize / 2,
	}
}

// SecondHalf iterates over the newest half of the buffer. It is nil until
// the buffer is full.
func (c *Circular[T]) SecondHalf() *Iterator[T] {
	if !c.Full() {
		return nil
	}

	half := c.BufSize / 2
	return &Iterator[T]{
		buf:    c,
		curr:   (c.pos + half) % c.BufSize,
		remain: half,
	}
}

// Iterator walks part of a Circular buffer
type Iterator[T any] struct {
	buf    *Circular[T]
	curr   int
	remain int
}

// Next returns true when there are more values to read via Value
func (i *Iterator[T]) Next() bool {
	return i.remain > 0
}

// Value returns the next value. Only call it when Next is true.
func (i *Iterator[T]) Value() T {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}

// HalfMeans returns the means of the older and newer halves of a full
// buffer; ok is false until the buffer fills.
func HalfMeans(c *Circular[float64]) (older float64, newer float64, ok bool) {
	first, second := c.FirstHalf(), c.SecondHalf()
	if first == nil || second == nil {
		return 0, 0, false
	}

	mean := func(it *Iterator[float64]) float64 {
		sum, n := 0.0, 0
		for it.Next() {
			sum += it.Value()
			n++
		}
		return sum / float64(n)
	}
	return mean(first), mean(second), true
}
