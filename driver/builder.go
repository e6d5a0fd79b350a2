package driver

import (
	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/datarecording"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phold/link"
	"github.com/sarchlab/phold/phasing"
	"github.com/sarchlab/phold/phold"
)

// Builder can build PHOLD drivers.
type Builder struct {
	engine   sim.Engine
	cfg      *phold.Config
	recorder datarecording.DataRecorder
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the event engine. A serial engine is created if none
// is given.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithConfig sets the run configuration.
func (b Builder) WithConfig(cfg *phold.Config) Builder {
	b.cfg = cfg
	return b
}

// WithDataRecorder sets the recorder the run summary and per-LP stats
// are written to. Recording is skipped if none is given.
func (b Builder) WithDataRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// Build creates a fully wired driver with the given name.
func (b Builder) Build(name string) *Driver {
	b.parametersMustBeValid()

	d := &Driver{
		cfg:      b.cfg,
		engine:   b.engine,
		recorder: b.recorder,
		runID:    xid.New().String(),
	}

	if d.engine == nil {
		d.engine = sim.NewSerialEngine()
	}

	d.fabric = phasing.NewFabric(b.cfg.NumLPs)
	d.tally = NewTally()

	d.buildLPs(name)
	d.buildLinks(name)

	for _, lp := range d.lps {
		lp.WiringMustBeComplete()
	}

	logrus.Debugf("run %s: wired %d LPs over %d links",
		d.runID, len(d.lps), len(d.links))

	return d
}

func (d *Driver) buildLPs(name string) {
	lpBuilder := phold.MakeBuilder().
		WithEngine(d.engine).
		WithConfig(d.cfg).
		WithFabric(d.fabric).
		WithVoter(d.tally)

	d.lps = make([]*phold.Comp, d.cfg.NumLPs)
	for i := range d.lps {
		d.lps[i] = lpBuilder.Build(
			sim.BuildNameWithIndex(name, "LP", i), i)
	}
}

// buildLinks creates one link per unordered LP pair and plugs in the
// two directed channels that share it.
func (d *Driver) buildLinks(name string) {
	linkBuilder := link.MakeBuilder().
		WithEngine(d.engine).
		WithLatency(d.cfg.MinDelay)

	for s := 0; s < d.cfg.NumLPs; s++ {
		for t := s + 1; t < d.cfg.NumLPs; t++ {
			l := linkBuilder.Build(
				sim.BuildNameWithMultiDimensionalIndex(
					name, "Link", []int{s, t}))

			l.PlugIn(d.lps[s].PortFor(t))
			l.PlugIn(d.lps[t].PortFor(s))

			d.lps[s].ConnectPeer(t, d.lps[t].PortFor(s).AsRemote())
			d.lps[t].ConnectPeer(s, d.lps[s].PortFor(t).AsRemote())

			d.links = append(d.links, l)
		}
	}
}

func (b Builder) parametersMustBeValid() {
	if b.cfg == nil {
		panic("driver: config is not given")
	}

	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}
}
