// Package cmd implements the phold command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/akita/v4/datarecording"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/phold/driver"
	"github.com/sarchlab/phold/phold"
)

var (
	configFile string
	logLevel   string
	verbosity  int
	outputPath string
	dryRun     bool

	remoteFraction       float64
	minimumDelay         float64
	averageDelay         float64
	stopTime             float64
	numberOfLPs          int
	initialEventsPerLP   int
	delayDistribution    string
	outputDelayHistogram bool
)

var rootCmd = &cobra.Command{
	Use:   "phold",
	Short: "Run the PHOLD discrete-event simulation benchmark",
	Long: `phold runs the classic PHOLD benchmark on the Akita event engine.
A configurable number of logical processes bounce randomly routed,
randomly delayed events off each other until the stop time, then roll
their counters up into a tree-wide total.`,
	Args: cobra.NoArgs,
	Run:  run,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&configFile, "config", "c", "",
		"YAML file with the run configuration; flags override it")
	flags.StringVar(&logLevel, "log-level", "info",
		"log level: trace, debug, info, warn, or error")
	flags.CountVarP(&verbosity, "verbose", "v",
		"raise the log level: -v for debug, -vv for trace")
	flags.StringVarP(&outputPath, "output", "o", "",
		"stats database path, without the .sqlite3 suffix")
	flags.BoolVar(&dryRun, "dry-run", false,
		"validate the configuration and exit without running")

	// The workload flags carry the names the benchmark has always used.
	flags.Float64Var(&remoteFraction, "remote", 0.9,
		"fraction of events routed to another LP")
	flags.Float64Var(&minimumDelay, "minimum", 0.1,
		"minimum delay of every channel, in simulated seconds")
	flags.Float64Var(&averageDelay, "average", 0.9,
		"mean additional delay of each event, in simulated seconds")
	flags.Float64Var(&stopTime, "stop", 100,
		"simulated time at which event collection stops")
	flags.IntVar(&numberOfLPs, "number", 2,
		"number of logical processes")
	flags.IntVar(&initialEventsPerLP, "events", 2,
		"initial events seeded per LP")
	flags.StringVar(&delayDistribution, "delay-distribution",
		phold.DelayExponential,
		"additional delay distribution: exponential or fixed")
	flags.BoolVar(&outputDelayHistogram, "output-delay-histogram", false,
		"record per-LP delay quantiles in the stats database")
}

func run(cmd *cobra.Command, _ []string) {
	setLogLevel()

	cfg := loadConfig(cmd)
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	if dryRun {
		logrus.Infof("configuration is valid: %d LPs until time %.6f",
			cfg.NumLPs, float64(cfg.StopTime))
		atexit.Exit(0)
	}

	d := driver.MakeBuilder().
		WithConfig(&cfg).
		WithDataRecorder(newRecorder()).
		Build("PHOLD")

	if err := d.Run(); err != nil {
		logrus.Fatalf("run failed: %v", err)
	}

	atexit.Exit(0)
}

func setLogLevel() {
	level, err := resolveLogLevel(logLevel, verbosity)
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	logrus.SetLevel(level)
}

// resolveLogLevel combines the named level with the -v count; the count
// only ever raises the level.
func resolveLogLevel(name string, verbosity int) (logrus.Level, error) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}

	switch {
	case verbosity >= 2:
		if level < logrus.TraceLevel {
			level = logrus.TraceLevel
		}
	case verbosity == 1:
		if level < logrus.DebugLevel {
			level = logrus.DebugLevel
		}
	}

	return level, nil
}

// loadConfig layers the configuration sources: built-in defaults, then
// the YAML file, then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) phold.Config {
	cfg := phold.DefaultConfig()

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		if err != nil {
			logrus.Fatalf("cannot read config file: %v", err)
		}

		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			logrus.Fatalf("cannot parse config file: %v", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("remote") {
		cfg.RemoteFraction = remoteFraction
	}
	if flags.Changed("minimum") {
		cfg.MinDelay = sim.VTimeInSec(minimumDelay)
	}
	if flags.Changed("average") {
		cfg.AvgDelay = sim.VTimeInSec(averageDelay)
	}
	if flags.Changed("stop") {
		cfg.StopTime = sim.VTimeInSec(stopTime)
	}
	if flags.Changed("number") {
		cfg.NumLPs = numberOfLPs
	}
	if flags.Changed("events") {
		cfg.InitialEvents = initialEventsPerLP
	}
	if flags.Changed("delay-distribution") {
		cfg.DelayDist = delayDistribution
	}
	if flags.Changed("output-delay-histogram") {
		cfg.OutputDelayHistogram = outputDelayHistogram
	}

	return cfg
}

func newRecorder() datarecording.DataRecorder {
	path := outputPath
	if path == "" {
		path = "phold_stats"
	}

	return datarecording.New(path)
}
