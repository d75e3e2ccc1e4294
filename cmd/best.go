package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/amwg/checkpoint"
	"github.com/CraigKelly/amwg/model"
)

var bestCmd = &cobra.Command{
	Use:   "best FILE1 FILE2",
	Short: "Compare two groups with BEST (Bayesian estimation supersedes the t-test)",
	Long: `Read one group of values from each file (whitespace separated) and sample the
BEST posterior over (mu1, mu2, sigma1, sigma2, nu). Reports the posterior mean
and highest density interval of mu1-mu2 and of every parameter.

With --checkpoint the sampler state is saved to a bolt database while sampling
and a later run with the same files resumes from it, skipping burn-in.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunBEST(newStartupParams(), args[0], args[1])
	},
}

// checkpointKey identifies a run by its input files
func checkpointKey(file1, file2 string) string {
	abs := func(fn string) string {
		if a, err := filepath.Abs(fn); err == nil {
			return a
		}
		return fn
	}
	return "best:" + abs(file1) + ":" + abs(file2)
}

// RunBEST is the full BEST run: read, (resume,) burn, sample, summarize.
func RunBEST(sp *startupParams, file1, file2 string) error {
	if sp.samples < 2 {
		return errors.Errorf("Need at least 2 samples, not %d", sp.samples)
	}
	if sp.burn < 0 {
		return errors.Errorf("Invalid burn-in %d", sp.burn)
	}

	y1, err := model.ReadValuesFile(file1)
	if err != nil {
		return err
	}
	y2, err := model.ReadValuesFile(file2)
	if err != nil {
		return err
	}
	sp.out.Printf("Read %d values from %s and %d values from %s\n", len(y1), file1, len(y2), file2)

	best, err := model.NewBEST(y1, y2, sp.settings())
	if err != nil {
		return err
	}
	defer best.Close()
	samp := best.Sampler()

	var store *checkpoint.Store
	key := checkpointKey(file1, file2)
	resumed := false

	if sp.checkpoint != "" {
		store, err = checkpoint.Open(sp.checkpoint)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Load(key)
		if err != nil {
			return err
		}
		if snap != nil {
			if err = samp.Restore(snap); err != nil {
				return errors.Wrapf(err, "Could not resume from checkpoint in %s", sp.checkpoint)
			}
			resumed = true
			sp.out.Printf("Resumed from checkpoint: %d sweeps, %d samples\n", samp.Sweeps(), samp.Chain().Len())
		}
	}

	var mon *monitor
	if sp.monitor != "" {
		mon = &monitor{}
		if err = mon.Start(sp.monitor); err != nil {
			return err
		}
		defer mon.Stop()
		mon.Configure(sp, samp)
	}

	startTime := time.Now()
	lastSave := startTime

	save := func(force bool) error {
		if store == nil {
			return nil
		}
		if !force && time.Since(lastSave).Seconds() < sp.checkpointSeconds {
			return nil
		}
		lastSave = time.Now()
		return store.Save(key, samp.Snapshot())
	}

	chunk := samp.Settings().BatchSize

	if !resumed {
		applog.Infof("Burn-in: %d sweeps", sp.burn)
		for done := 0; done < sp.burn; {
			step := chunkSize(chunk, sp.burn-done)
			if err = best.Burn(step); err != nil {
				return errors.Wrap(err, "Burn-in failed")
			}
			done += step
			mon.Update(samp)
		}
		// Only checkpoint after burn-in so a resume never needs to redo it
		if err = save(true); err != nil {
			return err
		}
	}

	remaining := sp.samples - samp.Chain().Len()
	applog.Infof("Sampling: %d sweeps", remaining)
	for remaining > 0 {
		step := chunkSize(chunk, remaining)
		if err = best.Sample(step); err != nil {
			return errors.Wrap(err, "Sampling failed")
		}
		remaining -= step
		mon.Update(samp)
		if err = save(false); err != nil {
			return err
		}
	}
	if err = save(true); err != nil {
		return err
	}
	applog.Infof("Finished in %.2fs", time.Since(startTime).Seconds())

	sum, err := best.Summarize(sp.mass)
	if err != nil {
		return err
	}
	reportSummary(sp, sum)

	if sp.summary != "" {
		if err = writeSummary(sp.summary, sum); err != nil {
			return err
		}
		sp.out.Printf("Summary written to %s\n", sp.summary)
	}

	return nil
}

func chunkSize(chunk, remaining int) int {
	if chunk < 1 || chunk > remaining {
		return remaining
	}
	return chunk
}

func reportSummary(sp *startupParams, sum *model.Summary) {
	sp.out.Printf("==================================================\n")
	sp.out.Printf("Samples: %d, HDI mass: %.3f\n", sum.Samples, sum.Mass)
	sp.out.Printf("%-8s %12s %12s %12s\n", "Param", "Mean", "HDI Low", "HDI High")
	sp.out.Printf("%-8s %12.5f %12.5f %12.5f\n", "mu1-mu2", sum.DiffMean, sum.DiffHDI.Low, sum.DiffHDI.High)
	for _, p := range sum.Params {
		sp.out.Printf("%-8s %12.5f %12.5f %12.5f\n", p.Name, p.Mean, p.HDI.Low, p.HDI.High)
	}
	sp.out.Printf("==================================================\n")
}

func writeSummary(filename string, sum *model.Summary) error {
	data, err := yaml.Marshal(sum)
	if err != nil {
		return errors.Wrap(err, "Could not serialize summary")
	}
	if err = os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrapf(err, "Could not write summary file %s", filename)
	}
	return nil
}
