package rand

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMTBadSeed(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGeneratorSlice([]uint64{})
	assert.Nil(gen)
	assert.Error(err)

	gen, err = ForWorker(42, -1)
	assert.Nil(gen)
	assert.Error(err)
}

func TestMTCanonicalSeed(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGeneratorSlice([]uint64{0x12345, 0x23456, 0x34567, 0x45678})
	assert.NotNil(gen)
	assert.NoError(err)

	origTestSeq := []uint64{
		7266447313870364031,
		4946485549665804864,
		16945909448695747420,
		16394063075524226720,
		4873882236456199058,
	}

	// Now convert to the format we should get from Int63
	for _, v := range origTestSeq {
		exp := int64(v & 0x7fffffffffffffff)
		act := gen.Int63()
		assert.Equal(exp, act)
	}
}

func TestWorkerStreams(t *testing.T) {
	assert := assert.New(t)

	g1, err := ForWorker(42, 0)
	require.NoError(t, err)
	g2, err := ForWorker(42, 0)
	require.NoError(t, err)
	g3, err := ForWorker(42, 1)
	require.NoError(t, err)

	same, diff := 0, 0
	for i := 0; i < 64; i++ {
		a, b, c := g1.Int63(), g2.Int63(), g3.Int63()
		if a == b {
			same++
		}
		if a != c {
			diff++
		}
	}

	assert.Equal(64, same)
	assert.True(diff > 60, "Slots 0 and 1 should not share a stream (diff=%d)", diff)
}

func TestFloatRanges(t *testing.T) {
	assert := assert.New(t)

	gen, err := NewGenerator(DefaultSeed)
	require.NoError(t, err)

	const n = 20000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		f := gen.Float64()
		assert.True(f >= 0.0 && f < 1.0)

		z := gen.NormFloat64()
		sum += z
		sumSq += z * z
	}

	mean := sum / n
	sd := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(0.0, mean, 0.05)
	assert.InDelta(1.0, sd, 0.05)
}

var benchSink float64

func BenchmarkNormFloat64(b *testing.B) {
	gen, err := NewGenerator(DefaultSeed)
	if err != nil {
		b.Fatalf("Could not init PRNG %v", err)
	}

	b.ResetTimer()
	s := 0.0
	for i := 0; i < b.N; i++ {
		s += gen.NormFloat64()
	}
	benchSink = s
}
