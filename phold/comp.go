// Package phold implements the PHOLD benchmark workload as an Akita
// component library: logical processes that exchange randomly routed,
// randomly delayed work events, plus the tree-shaped setup and teardown
// collectives that hand out start tokens and roll up global counters.
package phold

import (
	"log"
	"math/rand"
	"reflect"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phold/phasing"
)

// An EndSimVoter collects the distributed quiescence vote. Every LP
// registers with DoNotEndSim at construction and calls OKToEndSim once
// its next candidate event could only land at or beyond the stop time.
type EndSimVoter interface {
	DoNotEndSim(id int)
	OKToEndSim(id int)
}

// Comp is one PHOLD logical process. It owns three deterministic RNG
// streams, one outbound channel per peer, and its own counters. All
// cross-LP effects travel as messages; no LP ever touches another LP's
// state.
type Comp struct {
	*sim.ComponentBase

	engine sim.Engine
	cfg    *Config
	id     int

	ports []sim.Port       // ports[t] carries traffic toward LP t
	peers []sim.RemotePort // peers[t] receives that traffic on LP t

	routeRng  *rand.Rand
	targetRng *rand.Rand
	delay     DelaySampler

	phase *phasing.Endpoint
	voter EndSimVoter
	voted bool

	stats    *Stats
	hasToken bool

	// Root only, valid once the teardown reduction has run.
	reduced   bool
	grandSend uint64
	grandRecv uint64
}

// ID returns the LP's index.
func (c *Comp) ID() int {
	return c.id
}

// Stats exposes the LP's counters.
func (c *Comp) Stats() *Stats {
	return c.stats
}

// Voted reports whether the LP has released its end-of-run vote.
func (c *Comp) Voted() bool {
	return c.voted
}

// HasToken reports whether the setup broadcast has reached this LP.
func (c *Comp) HasToken() bool {
	return c.hasToken
}

// PortFor returns the port this LP sends through to reach LP target.
func (c *Comp) PortFor(target int) sim.Port {
	return c.ports[target]
}

// ConnectPeer records the remote port on LP target that receives this
// LP's traffic for it.
func (c *Comp) ConnectPeer(target int, remote sim.RemotePort) {
	if target == c.id {
		log.Panicf("LP %d: the self channel is not a peer", c.id)
	}

	c.peers[target] = remote
}

// WiringMustBeComplete panics unless every non-self channel is
// connected to the LP with the matching index.
func (c *Comp) WiringMustBeComplete() {
	for t := 0; t < c.cfg.NumLPs; t++ {
		if t == c.id {
			continue
		}

		if c.ports[t] == nil || c.peers[t] == "" {
			log.Panicf("LP %d: channel toward LP %d is not connected",
				c.id, t)
		}
	}
}

// SendEvent generates one work event: it draws a routing decision and a
// delay, applies the admission check against the stop time, and
// schedules the event. It reports whether the event was admitted.
func (c *Comp) SendEvent() bool {
	target := c.id
	if c.routeRng.Float64() < c.cfg.RemoteFraction {
		target = c.drawRemoteTarget()
	}

	delay := c.delay.Sample()
	total := delay + c.cfg.MinDelay
	now := c.engine.CurrentTime()
	arrival := now + total

	// The boundary is exclusive: an event landing exactly at the stop
	// time is rejected.
	if arrival >= c.cfg.StopTime {
		return false
	}

	if target == c.id {
		// The self channel has no implicit latency, so the minimum
		// delay is added here.
		c.engine.Schedule(newSelfWorkEvent(arrival, c, now))
	} else {
		// The link adds the minimum delay after the hold expires.
		c.engine.Schedule(newDepartEvent(now+delay, c, target, now))
	}

	c.stats.SendCount++
	// The digest records the full path latency, channel minimum
	// included, on the remote and the self route alike.
	c.stats.observeDelay(total)

	return true
}

// drawRemoteTarget picks a uniform target other than this LP by
// rejection sampling.
func (c *Comp) drawRemoteTarget() int {
	for {
		target := c.targetRng.Intn(c.cfg.NumLPs)
		if target != c.id {
			return target
		}

		c.stats.TargetRetries++
	}
}

const maxSeedAttempts = 1 << 20

// Setup schedules this LP's initial events. Only admitted events count
// toward the quota, so every seeded event arrives before the stop time
// and the LP is guaranteed live work.
func (c *Comp) Setup() {
	attempts := 0
	for scheduled := 0; scheduled < c.cfg.InitialEvents; {
		attempts++
		if attempts > maxSeedAttempts {
			log.Panicf("LP %d: could not seed %d events in %d attempts",
				c.id, c.cfg.InitialEvents, maxSeedAttempts)
		}

		if c.SendEvent() {
			scheduled++
		}
	}

	logrus.Debugf("LP %d seeded %d events", c.id, c.cfg.InitialEvents)
}

// Handle processes this LP's self-scheduled events.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *departEvent:
		c.depart(e)
	case *selfWorkEvent:
		c.receiveWork(e.sendTime)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// depart pushes a held work event out on its link.
func (c *Comp) depart(e *departEvent) {
	port := c.ports[e.target]
	msg := NewWorkMsg(port.AsRemote(), c.peers[e.target], e.sendTime)

	if err := port.Send(msg); err != nil {
		log.Panicf("LP %d: outgoing buffer toward LP %d is full",
			c.id, e.target)
	}
}

// NotifyRecv drains and processes every message delivered to a port.
func (c *Comp) NotifyRecv(port sim.Port) {
	for {
		msg := port.RetrieveIncoming()
		if msg == nil {
			return
		}

		switch msg := msg.(type) {
		case *WorkMsg:
			c.receiveWork(msg.SendTime)
		default:
			log.Panicf("cannot handle msg of type %s", reflect.TypeOf(msg))
		}
	}
}

// NotifyPortFree does nothing: the LP never blocks on a send.
func (c *Comp) NotifyPortFree(_ sim.Port) {
}

// receiveWork runs the classic receive-one-send-one PHOLD cycle.
func (c *Comp) receiveWork(sendTime sim.VTimeInSec) {
	now := c.engine.CurrentTime()

	if now >= c.cfg.StopTime {
		if c.voted {
			// A benign race in vote propagation, not a workload error.
			c.stats.AnomalousRecvs++
			logrus.Warnf(
				"LP %d received work sent at %.6f after voting to end (now %.6f)",
				c.id, float64(sendTime), float64(now))
		}

		c.voteOKToEnd()

		return
	}

	c.stats.RecvCount++

	if !c.SendEvent() {
		// The next candidate event could only land at or beyond the
		// stop time; this LP may be out of work.
		c.voteOKToEnd()
	}
}

func (c *Comp) voteOKToEnd() {
	if c.voted {
		return
	}

	c.voted = true
	if c.voter != nil {
		c.voter.OKToEndSim(c.id)
	}
}

// Finish is the one-shot teardown hook. The benchmark has nothing left
// to tear down by the time it runs.
func (c *Comp) Finish() {
}
