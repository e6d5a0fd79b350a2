package phold

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/phold/phasing"
)

func buildTestLPs(cfg *Config) (sim.Engine, *phasing.Fabric, []*Comp) {
	engine := sim.NewSerialEngine()
	fabric := phasing.NewFabric(cfg.NumLPs)

	builder := MakeBuilder().
		WithEngine(engine).
		WithConfig(cfg).
		WithFabric(fabric)

	lps := make([]*Comp, cfg.NumLPs)
	for i := range lps {
		lps[i] = builder.Build(
			sim.BuildNameWithIndex("Test", "LP", i), i)
	}

	return engine, fabric, lps
}

// frozenClockEngine reports a fixed current time, standing in for a
// host whose clock has already passed the stop time.
type frozenClockEngine struct {
	sim.Engine

	now sim.VTimeInSec
}

func (e frozenClockEngine) CurrentTime() sim.VTimeInSec {
	return e.now
}

var _ = ginkgo.Describe("Comp", func() {
	ginkgo.Context("remote target draw", func() {
		ginkgo.It("should never pick the sender itself", func() {
			cfg := DefaultConfig()
			cfg.NumLPs = 8
			_, _, lps := buildTestLPs(&cfg)

			lp := lps[3]
			for i := 0; i < 10000; i++ {
				target := lp.drawRemoteTarget()

				Expect(target).NotTo(Equal(3))
				Expect(target).To(And(
					BeNumerically(">=", 0),
					BeNumerically("<", cfg.NumLPs)))
			}
		})

		ginkgo.It("should draw the same sequence for the same LP", func() {
			cfg := DefaultConfig()
			cfg.NumLPs = 8
			_, _, first := buildTestLPs(&cfg)
			_, _, second := buildTestLPs(&cfg)

			for i := 0; i < 100; i++ {
				Expect(first[5].drawRemoteTarget()).
					To(Equal(second[5].drawRemoteTarget()))
			}
		})
	})

	ginkgo.Context("admission check", func() {
		ginkgo.It("should reject an event landing exactly at the stop time", func() {
			cfg := DefaultConfig()
			cfg.RemoteFraction = 0
			cfg.MinDelay = 1
			cfg.AvgDelay = 9
			cfg.StopTime = 10
			cfg.DelayDist = DelayFixed
			_, _, lps := buildTestLPs(&cfg)

			Expect(lps[0].SendEvent()).To(BeFalse())
			Expect(lps[0].Stats().SendCount).To(Equal(uint64(0)))
		})

		ginkgo.It("should admit an event landing just before the stop time", func() {
			cfg := DefaultConfig()
			cfg.RemoteFraction = 0
			cfg.MinDelay = 1
			cfg.AvgDelay = 8.5
			cfg.StopTime = 10
			cfg.DelayDist = DelayFixed
			_, _, lps := buildTestLPs(&cfg)

			Expect(lps[0].SendEvent()).To(BeTrue())
			Expect(lps[0].Stats().SendCount).To(Equal(uint64(1)))
		})
	})

	ginkgo.Context("seeding", func() {
		ginkgo.It("should count only admitted events toward the quota", func() {
			cfg := DefaultConfig()
			cfg.MinDelay = 1
			cfg.AvgDelay = 2
			cfg.StopTime = 100
			cfg.InitialEvents = 3
			cfg.DelayDist = DelayFixed
			_, _, lps := buildTestLPs(&cfg)

			lps[1].Setup()

			Expect(lps[1].Stats().SendCount).To(Equal(uint64(3)))
		})
	})

	ginkgo.Context("work arriving after the stop time", func() {
		ginkgo.It("should release the vote, then count later receives as anomalies", func() {
			cfg := DefaultConfig()
			cfg.StopTime = 10
			engine, _, lps := buildTestLPs(&cfg)

			lp := lps[0]
			lp.engine = frozenClockEngine{Engine: engine, now: 10}

			lp.receiveWork(5)

			Expect(lp.Voted()).To(BeTrue())
			Expect(lp.Stats().RecvCount).To(Equal(uint64(0)))
			Expect(lp.Stats().AnomalousRecvs).To(Equal(uint64(0)))

			lp.receiveWork(6)
			lp.receiveWork(7)

			Expect(lp.Stats().AnomalousRecvs).To(Equal(uint64(2)))
			Expect(lp.Stats().RecvCount).To(Equal(uint64(0)))
			Expect(lp.Stats().SendCount).To(Equal(uint64(0)))
		})
	})

	ginkgo.Context("event chains on the self channel", func() {
		ginkgo.It("should run receive-one-send-one until the stop time", func() {
			cfg := DefaultConfig()
			cfg.RemoteFraction = 0
			cfg.MinDelay = 1
			cfg.AvgDelay = 2
			cfg.StopTime = 10
			cfg.InitialEvents = 1
			cfg.DelayDist = DelayFixed
			engine, _, lps := buildTestLPs(&cfg)

			lps[0].Setup()
			Expect(engine.Run()).To(Succeed())

			// Arrivals at 3, 6, 9; the resend at 9 would land at 12 and
			// is rejected, releasing the vote.
			Expect(lps[0].Stats().SendCount).To(Equal(uint64(3)))
			Expect(lps[0].Stats().RecvCount).To(Equal(uint64(3)))
			Expect(lps[0].Voted()).To(BeTrue())
			Expect(lps[1].Stats().SendCount).To(Equal(uint64(0)))
		})
	})
})

var _ = ginkgo.Describe("Config", func() {
	ginkgo.It("should accept the defaults", func() {
		cfg := DefaultConfig()
		Expect(cfg.Validate()).To(Succeed())
	})

	ginkgo.It("should reject bad parameters", func() {
		bad := []func(*Config){
			func(c *Config) { c.NumLPs = 1 },
			func(c *Config) { c.InitialEvents = 0 },
			func(c *Config) { c.RemoteFraction = 1.5 },
			func(c *Config) { c.RemoteFraction = -0.1 },
			func(c *Config) { c.MinDelay = 0 },
			func(c *Config) { c.AvgDelay = -1 },
			func(c *Config) { c.StopTime = 0 },
			func(c *Config) { c.MinDelay = 200 },
			func(c *Config) { c.DelayDist = "uniform" },
		}

		for _, corrupt := range bad {
			cfg := DefaultConfig()
			corrupt(&cfg)

			Expect(cfg.Validate()).NotTo(Succeed())
		}
	})
})
