package link

import "github.com/sarchlab/akita/v4/sim"

// Builder can build links.
type Builder struct {
	engine  sim.Engine
	latency sim.VTimeInSec
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine that the link schedules deliveries on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithLatency sets the fixed latency the link adds to every message.
func (b Builder) WithLatency(latency sim.VTimeInSec) Builder {
	b.latency = latency
	return b
}

// Build creates a link with the given name.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := new(Comp)
	c.name = name
	c.engine = b.engine
	c.latency = b.latency
	c.blocked = make(map[sim.Port][]sim.Msg)

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("link: engine is not given")
	}

	if b.latency < 0 {
		panic("link: latency must not be negative")
	}
}
