// Package link provides the channel between a pair of LPs: a two-ended
// connection that delivers every message at its departure time plus a
// fixed latency.
package link

import (
	"log"
	"reflect"

	"github.com/sarchlab/akita/v4/sim"
)

// deliverEvent moves one message from the link to its destination port.
type deliverEvent struct {
	*sim.EventBase

	msg sim.Msg
}

func newDeliverEvent(
	time sim.VTimeInSec,
	handler sim.Handler,
	msg sim.Msg,
) *deliverEvent {
	e := new(deliverEvent)
	e.EventBase = sim.NewEventBase(time, handler)
	e.msg = msg

	return e
}

// Comp is a point-to-point link. Exactly two ports plug into it; each
// message departs when its sender pushes it out and arrives at the
// destination port after the link's latency.
type Comp struct {
	sim.HookableBase

	name    string
	engine  sim.Engine
	latency sim.VTimeInSec

	ports   []sim.Port
	blocked map[sim.Port][]sim.Msg
}

// Name returns the name of the link.
func (c *Comp) Name() string {
	return c.name
}

// PlugIn connects one end of the link to a port.
func (c *Comp) PlugIn(port sim.Port) {
	if len(c.ports) == 2 {
		log.Panicf("link %s already has two ends", c.name)
	}

	c.ports = append(c.ports, port)
	port.SetConnection(c)
}

// Unplug removes a port from the link.
func (c *Comp) Unplug(_ sim.Port) {
	panic("not implemented")
}

// NotifyAvailable is called by a port to notify that it can accept
// deliveries again. Messages that were blocked on that port are retried
// immediately.
func (c *Comp) NotifyAvailable(port sim.Port) {
	pending := c.blocked[port]
	if len(pending) == 0 {
		return
	}

	delete(c.blocked, port)

	now := c.engine.CurrentTime()
	for _, msg := range pending {
		c.engine.Schedule(newDeliverEvent(now, c, msg))
	}
}

// NotifySend is called by a port when it has outgoing messages. The
// link retrieves them right away and schedules their arrival.
func (c *Comp) NotifySend() {
	now := c.engine.CurrentTime()

	for _, port := range c.ports {
		for {
			msg := port.RetrieveOutgoing()
			if msg == nil {
				break
			}

			c.engine.Schedule(newDeliverEvent(now+c.latency, c, msg))
		}
	}
}

// Handle delivers arriving messages.
func (c *Comp) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *deliverEvent:
		c.deliver(e.msg)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (c *Comp) deliver(msg sim.Msg) {
	dst := c.dstPort(msg)

	if err := dst.Deliver(msg); err != nil {
		// Destination buffer is full. Park the message until the port
		// frees up.
		c.blocked[dst] = append(c.blocked[dst], msg)
	}
}

func (c *Comp) dstPort(msg sim.Msg) sim.Port {
	for _, port := range c.ports {
		if port.AsRemote() == msg.Meta().Dst {
			return port
		}
	}

	log.Panicf("link %s: msg dst %s is not plugged into this link",
		c.name, msg.Meta().Dst)

	return nil
}
