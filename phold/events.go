package phold

import "github.com/sarchlab/akita/v4/sim"

// departEvent fires when a work event's sampled hold expires and the
// message must depart toward a remote LP. The link adds the minimum
// delay on top.
type departEvent struct {
	*sim.EventBase

	target   int
	sendTime sim.VTimeInSec
}

func newDepartEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	target int,
	sendTime sim.VTimeInSec,
) *departEvent {
	e := new(departEvent)
	e.EventBase = sim.NewEventBase(time, handler)
	e.target = target
	e.sendTime = sendTime

	return e
}

// selfWorkEvent delivers a self-targeted work event. The self channel
// has no implicit latency, so the sender schedules this at hold expiry
// plus the minimum delay.
type selfWorkEvent struct {
	*sim.EventBase

	sendTime sim.VTimeInSec
}

func newSelfWorkEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	sendTime sim.VTimeInSec,
) *selfWorkEvent {
	e := new(selfWorkEvent)
	e.EventBase = sim.NewEventBase(time, handler)
	e.sendTime = sendTime

	return e
}
