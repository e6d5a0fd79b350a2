package phold

import (
	"math/rand"

	"github.com/sarchlab/akita/v4/sim"
)

// A DelaySampler draws the additional delay attached to each event, on
// top of the channel's minimum latency.
type DelaySampler interface {
	Sample() sim.VTimeInSec
}

// ExponentialDelay draws exponentially distributed delays.
type ExponentialDelay struct {
	mean sim.VTimeInSec
	rng  *rand.Rand
}

// NewExponentialDelay creates a sampler with the given mean, drawing
// from its own deterministic stream.
func NewExponentialDelay(mean sim.VTimeInSec, seed int64) *ExponentialDelay {
	return &ExponentialDelay{
		mean: mean,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Sample draws one delay.
func (d *ExponentialDelay) Sample() sim.VTimeInSec {
	return sim.VTimeInSec(d.rng.ExpFloat64()) * d.mean
}

// FixedDelay always returns the same delay. It replaces the exponential
// draw in variance-reduced runs.
type FixedDelay struct {
	delay sim.VTimeInSec
}

// NewFixedDelay creates a sampler that always returns delay.
func NewFixedDelay(delay sim.VTimeInSec) *FixedDelay {
	return &FixedDelay{delay: delay}
}

// Sample returns the fixed delay.
func (d *FixedDelay) Sample() sim.VTimeInSec {
	return d.delay
}
