// Package phasing implements the untimed message exchange that the
// setup and teardown collectives run on, outside of simulated time.
//
// The fabric is a set of point-to-point mailboxes double-buffered
// around an explicit global barrier: a message sent during one phase
// becomes receivable only after the next Barrier call. This mirrors the
// host kernel's guarantee that no message crosses a phase boundary out
// of order, which is what lets the collectives certify coverage with
// plain emptiness asserts.
package phasing

// A Delivery is one untimed message as seen by its receiver.
type Delivery struct {
	From    int
	Payload any
}

// Fabric connects a fixed set of endpoints.
type Fabric struct {
	inboxes [][]Delivery // receivable during the current phase
	staged  [][]Delivery // sent during the current phase
}

// NewFabric creates a fabric connecting n endpoints, identified by the
// ids 0 through n-1.
func NewFabric(n int) *Fabric {
	if n < 1 {
		panic("phasing: a fabric needs at least one endpoint")
	}

	return &Fabric{
		inboxes: make([][]Delivery, n),
		staged:  make([][]Delivery, n),
	}
}

// NumEndpoints returns the number of endpoints the fabric connects.
func (f *Fabric) NumEndpoints() int {
	return len(f.inboxes)
}

// Endpoint returns endpoint id's view of the fabric.
func (f *Fabric) Endpoint(id int) *Endpoint {
	f.idMustBeValid(id)

	return &Endpoint{fabric: f, id: id}
}

// Barrier ends the current phase. Everything staged during the phase
// becomes receivable. The caller must guarantee that no endpoint is
// mid-callback, the same contract a host barrier provides.
func (f *Fabric) Barrier() {
	for id := range f.inboxes {
		f.inboxes[id] = append(f.inboxes[id], f.staged[id]...)
		f.staged[id] = nil
	}
}

// PendingTotal returns the number of messages that are staged or
// receivable anywhere in the fabric. A quiescent fabric reports zero.
func (f *Fabric) PendingTotal() int {
	total := 0
	for id := range f.inboxes {
		total += len(f.inboxes[id]) + len(f.staged[id])
	}

	return total
}

func (f *Fabric) idMustBeValid(id int) {
	if id < 0 || id >= len(f.inboxes) {
		panic("phasing: endpoint id out of range")
	}
}

// An Endpoint sends and receives untimed messages on behalf of one
// participant.
type Endpoint struct {
	fabric *Fabric
	id     int
}

// ID returns the endpoint's id.
func (e *Endpoint) ID() int {
	return e.id
}

// Send stages a message for dst. It becomes receivable at dst after the
// next barrier.
func (e *Endpoint) Send(dst int, payload any) {
	e.fabric.idMustBeValid(dst)

	e.fabric.staged[dst] = append(e.fabric.staged[dst],
		Delivery{From: e.id, Payload: payload})
}

// Receive pops the next receivable message, if any.
func (e *Endpoint) Receive() (Delivery, bool) {
	in := e.fabric.inboxes[e.id]
	if len(in) == 0 {
		return Delivery{}, false
	}

	d := in[0]
	e.fabric.inboxes[e.id] = in[1:]

	return d, true
}

// Pending returns the number of receivable messages at this endpoint.
func (e *Endpoint) Pending() int {
	return len(e.fabric.inboxes[e.id])
}
