// Package driver assembles and runs a complete PHOLD benchmark: it
// builds the LPs, the links between them, and the phased fabric the
// collectives run on, then takes the run through setup broadcast,
// workload seeding, event processing, and teardown reduction.
package driver

import (
	"log"

	"github.com/sarchlab/akita/v4/datarecording"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phold/link"
	"github.com/sarchlab/phold/phasing"
	"github.com/sarchlab/phold/phold"
)

// A Driver owns everything a PHOLD run needs.
type Driver struct {
	cfg      *phold.Config
	engine   sim.Engine
	fabric   *phasing.Fabric
	tally    *Tally
	lps      []*phold.Comp
	links    []*link.Comp
	recorder datarecording.DataRecorder
	runID    string
}

// Run takes the benchmark through its whole life cycle: the setup
// broadcast, workload seeding, the timed run, the teardown reduction,
// and stats recording.
func (d *Driver) Run() error {
	d.runSetupBroadcast()
	d.seedInitialEvents()

	if err := d.engine.Run(); err != nil {
		return err
	}
	d.engine.Finished()

	d.reportVotes()
	d.runTeardownReduction()
	d.reportTotals()
	d.recordStats()
	d.finish()

	return nil
}

// Engine exposes the event engine, mainly so callers can read the
// final virtual time.
func (d *Driver) Engine() sim.Engine {
	return d.engine
}

// LP returns LP id.
func (d *Driver) LP(id int) *phold.Comp {
	return d.lps[id]
}

// runSetupBroadcast walks the start token down the LP tree, one tree
// level per phase, with a full barrier between phases.
func (d *Driver) runSetupBroadcast() {
	for phase := 0; phase <= d.cfg.MaxTreeDepth(); phase++ {
		for _, lp := range d.lps {
			lp.Init(phase)
		}

		d.fabric.Barrier()
	}

	d.fabricMustBeQuiet("setup broadcast")

	for _, lp := range d.lps {
		if !lp.HasToken() {
			log.Panicf("setup broadcast never reached LP %d", lp.ID())
		}
	}
}

// runTeardownReduction rolls the per-LP counters up the tree,
// leaves first, one tree level per phase.
func (d *Driver) runTeardownReduction() {
	for phase := 0; phase <= d.cfg.MaxTreeDepth(); phase++ {
		for _, lp := range d.lps {
			lp.Complete(phase)
		}

		d.fabric.Barrier()
	}

	d.fabricMustBeQuiet("teardown reduction")
}

func (d *Driver) fabricMustBeQuiet(collective string) {
	if n := d.fabric.PendingTotal(); n != 0 {
		log.Panicf("%s left %d messages in the fabric", collective, n)
	}
}

func (d *Driver) seedInitialEvents() {
	for _, lp := range d.lps {
		lp.Setup()
	}

	logrus.Debugf("seeded %d initial events across %d LPs",
		d.cfg.InitialEvents*d.cfg.NumLPs, d.cfg.NumLPs)
}

func (d *Driver) reportVotes() {
	if d.tally.AllReleased() {
		logrus.Debugf("all %d LPs voted to end before the queue drained",
			d.cfg.NumLPs)
		return
	}

	// An LP that never received work after its last admitted send keeps
	// its vote; the queue draining is what actually ends the run.
	logrus.Debugf("LPs %v never released their end-of-run vote",
		d.tally.Outstanding())
}

// reportTotals cross-checks the reduced grand totals against a direct
// sum of the per-LP counters, then prints the run summary.
func (d *Driver) reportTotals() {
	grandSend, grandRecv := d.lps[0].GrandTotals()

	var localSend, localRecv uint64
	for _, lp := range d.lps {
		localSend += lp.Stats().SendCount
		localRecv += lp.Stats().RecvCount
	}

	if grandSend != localSend || grandRecv != localRecv {
		log.Panicf(
			"reduction totals (%d sent, %d received) do not match "+
				"the per-LP sums (%d sent, %d received)",
			grandSend, grandRecv, localSend, localRecv)
	}

	end := float64(d.engine.CurrentTime())
	rate := 0.0
	if end > 0 {
		rate = float64(grandRecv) / end
	}

	logrus.Infof("run %s: %d LPs, %d events sent, %d received, "+
		"final virtual time %.6f s, %.1f events per simulated second",
		d.runID, d.cfg.NumLPs, grandSend, grandRecv, end, rate)
}

func (d *Driver) finish() {
	for _, lp := range d.lps {
		lp.Finish()
	}
}
