package model

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/stats"
)

// ParamSummary describes one parameter's marginal in the chain.
type ParamSummary struct {
	Name string         `json:"name" yaml:"name"`
	Mean float64        `json:"mean" yaml:"mean"`
	HDI  stats.Interval `json:"hdi" yaml:"hdi"`
}

// Summary is what we report at the end of a BEST run.
type Summary struct {
	Samples  int            `json:"samples" yaml:"samples"`
	Mass     float64        `json:"mass" yaml:"mass"`
	DiffMean float64        `json:"diffMean" yaml:"diffMean"`
	DiffHDI  stats.Interval `json:"diffHDI" yaml:"diffHDI"`
	Params   []ParamSummary `json:"params" yaml:"params"`
}

// Summarize computes the mean and HDI of mu1-mu2 (and of every parameter)
// over the chain.
func (b *BEST) Summarize(mass float64) (*Summary, error) {
	ch := b.samp.Chain()
	n := ch.Len()
	if n < 2 {
		return nil, errors.Errorf("Need at least 2 samples to summarize, have %d", n)
	}

	diff := make([]float64, n)
	for k := 0; k < n; k++ {
		s := ch.At(k)
		diff[k] = s[Mu1] - s[Mu2]
	}

	hdi, err := stats.HDI(diff, mass)
	if err != nil {
		return nil, errors.Wrap(err, "Could not compute HDI of mu1-mu2")
	}

	sum := &Summary{
		Samples:  n,
		Mass:     mass,
		DiffMean: stats.Mean(diff),
		DiffHDI:  hdi,
		Params:   make([]ParamSummary, ParamCount),
	}

	for j, name := range ParamNames {
		col, err := ch.Column(j)
		if err != nil {
			return nil, err
		}
		phdi, err := stats.HDI(col, mass)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not compute HDI of %s", name)
		}
		sum.Params[j] = ParamSummary{
			Name: name,
			Mean: stats.Mean(col),
			HDI:  phdi,
		}
	}

	return sum, nil
}
