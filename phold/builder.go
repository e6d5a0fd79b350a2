package phold

import (
	"math/rand"
	"strconv"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/phold/phasing"
)

// Builder can build PHOLD LPs.
type Builder struct {
	engine     sim.Engine
	cfg        *Config
	fabric     *phasing.Fabric
	voter      EndSimVoter
	portBufCap int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		portBufCap: 16,
	}
}

// WithEngine sets the engine the LP schedules its events on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithConfig sets the run configuration shared by all LPs.
func (b Builder) WithConfig(cfg *Config) Builder {
	b.cfg = cfg
	return b
}

// WithFabric sets the untimed fabric the collectives run on.
func (b Builder) WithFabric(fabric *phasing.Fabric) Builder {
	b.fabric = fabric
	return b
}

// WithVoter sets the end-of-run vote collector. The LP registers with
// it at construction.
func (b Builder) WithVoter(voter EndSimVoter) Builder {
	b.voter = voter
	return b
}

// WithPortBufCap sets the capacity of each port buffer.
func (b Builder) WithPortBufCap(cap int) Builder {
	b.portBufCap = cap
	return b
}

// Build creates LP id with the given name.
func (b Builder) Build(name string, id int) *Comp {
	b.parametersMustBeValid(id)

	c := &Comp{
		engine: b.engine,
		cfg:    b.cfg,
		id:     id,
	}
	c.ComponentBase = sim.NewComponentBase(name)

	// Three independent streams per LP, all seeded deterministically
	// and never with zero.
	c.routeRng = rand.New(rand.NewSource(int64(1 + id)))
	c.targetRng = rand.New(rand.NewSource(int64(1 + id + b.cfg.NumLPs)))
	c.delay = b.newDelaySampler(id)

	c.ports = make([]sim.Port, b.cfg.NumLPs)
	c.peers = make([]sim.RemotePort, b.cfg.NumLPs)
	for t := 0; t < b.cfg.NumLPs; t++ {
		if t == id {
			continue // the self channel is a self-scheduled event
		}

		portName := sim.BuildNameWithIndex(name, "Port", t)
		c.ports[t] = sim.NewPort(c, b.portBufCap, b.portBufCap, portName)
		c.AddPort("Port["+strconv.Itoa(t)+"]", c.ports[t])
	}

	c.phase = b.fabric.Endpoint(id)

	c.voter = b.voter
	if b.voter != nil {
		b.voter.DoNotEndSim(id)
	}

	c.stats = newStats(b.cfg.OutputDelayHistogram)

	return c
}

func (b Builder) newDelaySampler(id int) DelaySampler {
	if b.cfg.DelayDist == DelayFixed {
		return NewFixedDelay(b.cfg.AvgDelay)
	}

	return NewExponentialDelay(
		b.cfg.AvgDelay, int64(1+id+2*b.cfg.NumLPs))
}

func (b Builder) parametersMustBeValid(id int) {
	if b.engine == nil {
		panic("phold: engine is not given")
	}

	if b.cfg == nil {
		panic("phold: config is not given")
	}

	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}

	if id < 0 || id >= b.cfg.NumLPs {
		panic("phold: LP id out of range")
	}

	if b.fabric == nil {
		panic("phold: phasing fabric is not given")
	}

	if b.fabric.NumEndpoints() != b.cfg.NumLPs {
		panic("phold: fabric size does not match the number of LPs")
	}

	if b.portBufCap < 1 {
		panic("phold: port buffer capacity must be at least 1")
	}
}
