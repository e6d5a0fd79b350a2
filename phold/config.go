package phold

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// Delay distribution selectors.
const (
	// DelayExponential draws each additional delay from an exponential
	// distribution with mean AvgDelay. This is the classic PHOLD
	// workload.
	DelayExponential = "exponential"

	// DelayFixed uses AvgDelay itself as the additional delay of every
	// event, for variance-reduced runs.
	DelayFixed = "fixed"
)

// Config describes one benchmark run. It is constructed once, validated
// once, and shared read-only by every LP, so that several independent
// runs can coexist in one process.
type Config struct {
	// RemoteFraction is the fraction of events routed to a uniformly
	// chosen LP other than the sender. The rest stay local.
	RemoteFraction float64 `yaml:"remoteFraction"`

	// MinDelay is the fixed minimum latency of every channel, in
	// simulated seconds. Cross-LP links add it implicitly; on the self
	// channel the sender adds it explicitly.
	MinDelay sim.VTimeInSec `yaml:"minimumDelay"`

	// AvgDelay is the mean additional delay sampled for each event.
	AvgDelay sim.VTimeInSec `yaml:"meanAdditionalDelay"`

	// StopTime is the simulated time at which event collection stops.
	// An event that would arrive at or after StopTime is never sent.
	StopTime sim.VTimeInSec `yaml:"stopTime"`

	// NumLPs is the total number of logical processes.
	NumLPs int `yaml:"numberOfLPs"`

	// InitialEvents is the number of events each LP schedules before
	// the run starts.
	InitialEvents int `yaml:"initialEventsPerLP"`

	// DelayDist selects the delay distribution, DelayExponential or
	// DelayFixed.
	DelayDist string `yaml:"delayDistribution"`

	// OutputDelayHistogram enables the digest of sampled total delays.
	OutputDelayHistogram bool `yaml:"outputDelayHistogram"`
}

// DefaultConfig returns the canonical PHOLD parameters.
func DefaultConfig() Config {
	return Config{
		RemoteFraction: 0.9,
		MinDelay:       0.1,
		AvgDelay:       0.9,
		StopTime:       100,
		NumLPs:         2,
		InitialEvents:  2,
		DelayDist:      DelayExponential,
	}
}

// Validate reports the first configuration violation, if any. A config
// must be validated before any LP is built; nothing is re-checked while
// events flow.
func (c Config) Validate() error {
	switch {
	case c.NumLPs < 2:
		return fmt.Errorf("numberOfLPs must be at least 2, got %d", c.NumLPs)
	case c.InitialEvents < 1:
		return fmt.Errorf("initialEventsPerLP must be at least 1, got %d",
			c.InitialEvents)
	case c.RemoteFraction < 0 || c.RemoteFraction > 1:
		return fmt.Errorf("remoteFraction must be in [0, 1], got %f",
			c.RemoteFraction)
	case c.MinDelay <= 0:
		return fmt.Errorf("minimumDelay must be positive, got %f",
			float64(c.MinDelay))
	case c.AvgDelay <= 0:
		return fmt.Errorf("meanAdditionalDelay must be positive, got %f",
			float64(c.AvgDelay))
	case c.StopTime <= 0:
		return fmt.Errorf("stopTime must be positive, got %f",
			float64(c.StopTime))
	case c.MinDelay >= c.StopTime:
		return fmt.Errorf(
			"minimumDelay %f leaves no room before stopTime %f, "+
				"no event could ever be admitted",
			float64(c.MinDelay), float64(c.StopTime))
	case c.DelayDist != DelayExponential && c.DelayDist != DelayFixed:
		return fmt.Errorf("unknown delay distribution %q", c.DelayDist)
	}

	return nil
}

// MaxTreeDepth returns the depth of the deepest LP in the collective
// tree, which is also the index of the last setup/teardown phase.
func (c Config) MaxTreeDepth() int {
	return treeDepthOfLast(c.NumLPs)
}
