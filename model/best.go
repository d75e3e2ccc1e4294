// Package model holds posterior models built on the AMWG sampler. BEST is
// Kruschke's "Bayesian estimation supersedes the t test": two groups with
// their own location and scale sharing one normality (tail) parameter.
package model

import (
	"math"

	"github.com/op/go-logging"
	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/sampler"
	"github.com/CraigKelly/amwg/stats"
)

var log = logging.MustGetLogger("model")

// Parameter indexes in a BEST vector
const (
	Mu1 = iota
	Mu2
	Sigma1
	Sigma2
	Nu
	ParamCount
)

// ParamNames are in parameter index order
var ParamNames = [ParamCount]string{"mu1", "mu2", "sigma1", "sigma2", "nu"}

// Prior constants
const (
	nuRate      = 1.0 / 29.0 // nu-1 ~ Exponential(1/29), mean 29
	nuStart     = 5.0
	muSDScale   = 1e6
	sigmaFactor = 1e3
)

// BEST compares two groups of real values.
type BEST struct {
	y1 []float64
	y2 []float64

	meanMu    float64
	sdMu      float64
	sigmaLow  float64
	sigmaHigh float64

	samp *sampler.AMWG[float64]
}

// NewBEST sets up the priors from the pooled data and starts a sampler at
// the per-group sample estimates. The data is copied. Close must be called
// to stop the sampler's workers.
func NewBEST(y1, y2 []float64, set *sampler.Settings) (*BEST, error) {
	if len(y1) < 2 || len(y2) < 2 {
		return nil, errors.Errorf("Each group needs at least 2 values (got %d and %d)", len(y1), len(y2))
	}

	b := &BEST{
		y1: append([]float64(nil), y1...),
		y2: append([]float64(nil), y2...),
	}

	pooled := make([]float64, 0, len(y1)+len(y2))
	pooled = append(pooled, y1...)
	pooled = append(pooled, y2...)

	for i, v := range pooled {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("Value %d (%v) is not finite", i, v)
		}
	}

	mean := stats.Mean(pooled)
	sd := stats.StdDev(pooled)
	if sd <= 0 {
		return nil, errors.New("Pooled data has zero variance")
	}

	b.meanMu = mean
	b.sdMu = sd * muSDScale
	b.sigmaLow = sd / sigmaFactor
	b.sigmaHigh = sd * sigmaFactor

	start := make([]float64, ParamCount)
	start[Mu1] = stats.Mean(y1)
	start[Mu2] = stats.Mean(y2)
	start[Sigma1] = b.startSigma(y1, sd)
	start[Sigma2] = b.startSigma(y2, sd)
	start[Nu] = nuStart

	log.Debugf("BEST priors: mu~N(%v, %v) sigma~U(%v, %v) start=%v",
		b.meanMu, b.sdMu, b.sigmaLow, b.sigmaHigh, start)

	samp, err := sampler.NewAMWG(start, b.JointPosterior, set)
	if err != nil {
		return nil, errors.Wrap(err, "Could not start BEST sampler")
	}
	b.samp = samp

	return b, nil
}

// startSigma is the group sd, or the pooled sd if the group's falls outside
// the prior support (a constant group, say).
func (b *BEST) startSigma(y []float64, pooled float64) float64 {
	sd := stats.StdDev(y)
	if sd <= b.sigmaLow || sd > b.sigmaHigh {
		return pooled
	}
	return sd
}

// JointPosterior is the unnormalized log posterior of a BEST vector. It
// only reads immutable data so the sampler workers may call it concurrently.
func (b *BEST) JointPosterior(p []float64) float64 {
	nu := p[Nu]
	if nu < 1 {
		return math.Inf(-1)
	}

	logP := stats.ExponentialLogPDF(nu-1, nuRate)
	logP += b.groupPosterior(p[Mu1], p[Sigma1], nu, b.y1)
	logP += b.groupPosterior(p[Mu2], p[Sigma2], nu, b.y2)
	return logP
}

// groupPosterior is the prior on (mu, sigma) plus the t likelihood of data.
func (b *BEST) groupPosterior(mu, sigma, nu float64, data []float64) float64 {
	if sigma <= b.sigmaLow {
		return math.Inf(-1)
	}

	logP := stats.UniformLogPDF(sigma, b.sigmaLow, b.sigmaHigh)
	if math.IsInf(logP, -1) {
		return logP
	}
	logP += stats.NormalLogPDF(mu, b.meanMu, b.sdMu)

	for _, v := range data {
		logP += stats.StudentTLogPDF(v, mu, sigma, nu)
	}
	return logP
}

// Burn runs n burn-in sweeps
func (b *BEST) Burn(n int) error {
	return b.samp.Burn(n)
}

// Sample adds n sweeps to the chain
func (b *BEST) Sample(n int) error {
	return b.samp.Sample(n)
}

// Sampler exposes the underlying sampler (for checkpointing and progress).
func (b *BEST) Sampler() *sampler.AMWG[float64] {
	return b.samp
}

// Close stops the sampler
func (b *BEST) Close() error {
	return b.samp.Close()
}
