package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/amwg/sampler"
	"github.com/CraigKelly/amwg/stats"
)

var (
	testY1 = []float64{1.96, 2.06, 2.03, 2.11, 1.88, 1.88, 2.08, 1.93, 2.03, 2.03, 2.03, 2.08, 2.03, 2.11, 1.93}
	testY2 = []float64{1.83, 1.93, 1.88, 1.85, 1.85, 1.91, 1.91, 1.85, 1.78, 1.91, 1.93, 1.80, 1.80, 1.85, 1.93,
		1.85, 1.83, 1.85, 1.91, 1.85, 1.91, 1.85, 1.80, 1.80, 1.85}
)

func testSettings() *sampler.Settings {
	return &sampler.Settings{
		BatchSize: sampler.DefaultBatchSize,
		Workers:   1,
		Seed:      42,
	}
}

func TestNewBESTErrors(t *testing.T) {
	assert := assert.New(t)

	b, err := NewBEST([]float64{1}, testY2, testSettings())
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBEST(testY1, []float64{}, testSettings())
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBEST([]float64{2, 2}, []float64{2, 2, 2}, testSettings())
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBEST([]float64{1, math.NaN()}, testY2, testSettings())
	assert.Nil(b)
	assert.Error(err)

	b, err = NewBEST(testY1, testY2, &sampler.Settings{BatchSize: 0, Workers: 1})
	assert.Nil(b)
	assert.ErrorIs(err, sampler.ErrBadBatchSize)
}

func TestJointPosterior(t *testing.T) {
	assert := assert.New(t)

	b, err := NewBEST(testY1, testY2, testSettings())
	require.NoError(t, err)
	defer b.Close()

	start := b.Sampler().State()
	assert.Equal(stats.Mean(testY1), start[Mu1])
	assert.Equal(stats.Mean(testY2), start[Mu2])
	assert.Equal(stats.StdDev(testY1), start[Sigma1])
	assert.Equal(nuStart, start[Nu])

	at := func(mu1, mu2, s1, s2, nu float64) float64 {
		return b.JointPosterior([]float64{mu1, mu2, s1, s2, nu})
	}

	base := at(start[Mu1], start[Mu2], start[Sigma1], start[Sigma2], start[Nu])
	assert.False(math.IsInf(base, 0) || math.IsNaN(base))
	assert.Equal(base, b.Sampler().PosteriorDensity())

	assert.True(math.IsInf(at(2, 1.9, 0.1, 0.1, 0.99), -1))
	assert.True(math.IsInf(at(2, 1.9, b.sigmaLow, 0.1, 5), -1))
	assert.True(math.IsInf(at(2, 1.9, 0.1, -1, 5), -1))
	assert.True(math.IsInf(at(2, 1.9, 0.1, b.sigmaHigh*2, 5), -1))

	// Moving a group mean far from its data costs density
	assert.True(at(start[Mu1]+1, start[Mu2], start[Sigma1], start[Sigma2], start[Nu]) < base)
}

func TestBESTRun(t *testing.T) {
	if testing.Short() {
		t.Skip("long running chain")
	}
	assert := assert.New(t)

	b, err := NewBEST(testY1, testY2, testSettings())
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Summarize(stats.DefaultMass)
	assert.Error(err)

	require.NoError(t, b.Burn(3000))
	assert.Equal(0, b.Sampler().Chain().Len())
	require.NoError(t, b.Sample(6000))

	sum, err := b.Summarize(stats.DefaultMass)
	require.NoError(t, err)

	assert.Equal(6000, sum.Samples)
	assert.Equal(stats.DefaultMass, sum.Mass)
	assert.InDelta(0.15, sum.DiffMean, 0.06)
	assert.True(sum.DiffHDI.Low > 0, "HDI %+v should exclude zero", sum.DiffHDI)
	assert.True(sum.DiffHDI.Contains(sum.DiffMean))

	require.Len(t, sum.Params, ParamCount)
	for j, p := range sum.Params {
		assert.Equal(ParamNames[j], p.Name)
		assert.True(p.HDI.Contains(p.Mean), "%s mean %v outside %+v", p.Name, p.Mean, p.HDI)
	}
	assert.True(sum.Params[Nu].Mean >= 1)
	assert.True(sum.Params[Sigma1].Mean > 0)
}
