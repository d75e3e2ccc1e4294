package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CraigKelly/amwg/rand"
	"github.com/CraigKelly/amwg/sampler"
	"github.com/CraigKelly/amwg/stats"
)

var applog = logging.MustGetLogger("amwg")
var logFormat = logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`)

var cfgFile string

// startupParams is everything a command needs, resolved from flags, the
// config file and the environment (in viper's precedence order).
type startupParams struct {
	verbose           bool
	seed              int64
	workers           int
	batch             int
	burn              int
	samples           int
	mass              float64
	checkpoint        string
	checkpointSeconds float64
	summary           string
	monitor           string

	out *log.Logger
}

// settings are the sampler settings for this run
func (sp *startupParams) settings() *sampler.Settings {
	return &sampler.Settings{
		BatchSize: sp.batch,
		Workers:   sp.workers,
		Seed:      sp.seed,
	}
}

func newStartupParams() *startupParams {
	return &startupParams{
		verbose:           viper.GetBool("verbose"),
		seed:              viper.GetInt64("seed"),
		workers:           viper.GetInt("workers"),
		batch:             viper.GetInt("batch"),
		burn:              viper.GetInt("burn"),
		samples:           viper.GetInt("samples"),
		mass:              viper.GetFloat64("mass"),
		checkpoint:        viper.GetString("checkpoint"),
		checkpointSeconds: viper.GetFloat64("checkpoint-seconds"),
		summary:           viper.GetString("summary"),
		monitor:           viper.GetString("monitor"),
		out:               log.New(os.Stdout, "", 0),
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "amwg",
	Short: "Adaptive Metropolis-within-Gibbs sampling",
	Long: `amwg samples posterior densities with an Adaptive Metropolis-within-Gibbs
sampler. Every dimension update draws one candidate per worker and keeps the
first one accepted; proposal scales adapt toward a 0.44 acceptance rate.

Among other features:

  - BEST: Bayesian two-group comparison (mu, sigma per group, shared nu)
  - Checkpointing of long runs to a bolt database
  - An expvar HTTP progress monitor
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(viper.GetBool("verbose"))
	},
}

// setupLogging sends all module loggers to stderr.
func setupLogging(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormat)
	leveled := logging.AddModuleLevel(formatted)
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}
	logging.SetBackend(leveled)
}

// initConfig reads in the config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".amwg")
	}

	viper.SetEnvPrefix("AMWG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Could not read config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.amwg.yaml)")
	pf.BoolP("verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	pf.Int64P("seed", "r", rand.DefaultSeed, "Random seed to use")
	pf.IntP("workers", "w", sampler.DefaultSettings().Workers, "Candidate proposals (worker goroutines) per dimension update")
	pf.IntP("batch", "b", sampler.DefaultBatchSize, "Sweeps between step size adaptations")

	for _, name := range []string{"verbose", "seed", "workers", "batch"} {
		viper.BindPFlag(name, pf.Lookup(name))
	}

	f := bestCmd.Flags()
	f.Int("burn", 5000, "Burn-in sweeps (discarded)")
	f.IntP("samples", "n", 5000, "Sweeps kept in the chain")
	f.Float64("mass", stats.DefaultMass, "Probability mass of the reported HDI")
	f.String("checkpoint", "", "Bolt database for checkpoints (resume if one is found)")
	f.Float64("checkpoint-seconds", 60, "Minimum seconds between checkpoint saves")
	f.String("summary", "", "Write a YAML summary to this file")
	f.String("monitor", "", "Serve expvar progress on this address (eg :8000)")

	for _, name := range []string{"burn", "samples", "mass", "checkpoint", "checkpoint-seconds", "summary", "monitor"} {
		viper.BindPFlag(name, f.Lookup(name))
	}

	rootCmd.AddCommand(bestCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
