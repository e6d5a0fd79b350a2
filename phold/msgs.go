package phold

import (
	"reflect"

	"github.com/sarchlab/akita/v4/sim"
)

// WorkMsg is the benchmark payload exchanged between LPs. It carries
// only the simulated time at which it was generated, for diagnostics.
type WorkMsg struct {
	sim.MsgMeta

	SendTime sim.VTimeInSec
}

// Meta returns the meta data of the message.
func (m *WorkMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a cloned WorkMsg with a different ID.
func (m *WorkMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// NewWorkMsg creates a work message from src to dst.
func NewWorkMsg(src, dst sim.RemotePort, sendTime sim.VTimeInSec) *WorkMsg {
	m := &WorkMsg{SendTime: sendTime}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = src
	m.Dst = dst
	m.TrafficClass = reflect.TypeOf(WorkMsg{}).String()

	return m
}

// Token is delivered to every LP exactly once during setup. It declares
// its sender so the receiver can verify the tree mapping.
type Token struct {
	Sender int
}

// Report carries the combined send and receive counts of an LP and its
// whole subtree during teardown.
type Report struct {
	SendCount uint64
	RecvCount uint64
}
