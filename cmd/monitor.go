package cmd

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/CraigKelly/amwg/buffer"
	"github.com/CraigKelly/amwg/sampler"
)

// densityWindow is how many recent log-density readings we keep
const densityWindow = 64

const progressName = "amwg-progress"

// monitor publishes run progress with expvar. A nil or unstarted monitor
// ignores updates, so callers don't need to check whether one was asked for.
type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server
	started time.Time
	recent  *buffer.Circular[float64]

	BurnIn      *expvar.Int
	Samples     *expvar.Int
	Workers     *expvar.Int
	BatchSize   *expvar.Int
	Sweeps      *expvar.Int
	ChainLength *expvar.Int
	Batches     *expvar.Int
	RunTime     *expvar.Float
	LogDensity  *expvar.Float

	OlderMeanDensity *expvar.Float
	NewerMeanDensity *expvar.Float
}

// Start begins serving /debug/vars on addr
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}
	if addr == "" {
		return errors.New("No monitor address given")
	}

	// expvar names are process wide
	if v, ok := expvar.Get(progressName).(*expvar.Map); ok {
		m.info = v
	} else {
		m.info = expvar.NewMap(progressName)
	}
	m.stopped = make(chan struct{})
	m.started = time.Now()
	m.recent = buffer.NewCircular[float64](densityWindow)

	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	// Only one thing to see: send the user there
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})
	m.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	m.BurnIn = new(expvar.Int)
	m.Samples = new(expvar.Int)
	m.Workers = new(expvar.Int)
	m.BatchSize = new(expvar.Int)
	m.Sweeps = new(expvar.Int)
	m.ChainLength = new(expvar.Int)
	m.Batches = new(expvar.Int)
	m.RunTime = new(expvar.Float)
	m.LogDensity = new(expvar.Float)
	m.OlderMeanDensity = new(expvar.Float)
	m.NewerMeanDensity = new(expvar.Float)

	m.info.Set("Burn-In", m.BurnIn)
	m.info.Set("Samples", m.Samples)
	m.info.Set("Workers", m.Workers)
	m.info.Set("Batch-Size", m.BatchSize)
	m.info.Set("Sweeps", m.Sweeps)
	m.info.Set("Chain-Length", m.ChainLength)
	m.info.Set("Batches", m.Batches)
	m.info.Set("Run-Time", m.RunTime)
	m.info.Set("Log-Density", m.LogDensity)
	m.info.Set("Older-Mean-Log-Density", m.OlderMeanDensity)
	m.info.Set("Newer-Mean-Log-Density", m.NewerMeanDensity)

	// Actual server that will close the stopped channel on exit
	started := make(chan struct{})
	go func() {
		defer close(m.stopped)
		fmt.Fprintf(os.Stderr, "HTTP now available at %v (see debug/vars/)\n", m.server.Addr)
		close(started)
		m.server.ListenAndServe()
	}()

	<-started
	return nil
}

// Configure records the run parameters
func (m *monitor) Configure(sp *startupParams, s *sampler.AMWG[float64]) {
	if m == nil || m.info == nil {
		return
	}
	m.BurnIn.Set(int64(sp.burn))
	m.Samples.Set(int64(sp.samples))
	m.Workers.Set(int64(s.Workers()))
	m.BatchSize.Set(int64(s.Settings().BatchSize))
}

// Update reads the current sampler progress
func (m *monitor) Update(s *sampler.AMWG[float64]) {
	if m == nil || m.info == nil {
		return
	}

	density := s.PosteriorDensity()
	m.recent.Add(density)

	m.Sweeps.Set(s.Sweeps())
	m.ChainLength.Set(int64(s.Chain().Len()))
	m.Batches.Set(int64(s.Batches()))
	m.RunTime.Set(time.Since(m.started).Seconds())
	m.LogDensity.Set(density)

	if older, newer, ok := buffer.HalfMeans(m.recent); ok {
		m.OlderMeanDensity.Set(older)
		m.NewerMeanDensity.Set(newer)
	}
}

// Stop shuts down the HTTP server (if it was started)
func (m *monitor) Stop() {
	if m == nil || m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		fmt.Fprintf(os.Stderr, "HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		fmt.Fprintf(os.Stderr, "HTTP would NOT stop: just continuing on\n")
	}
}
