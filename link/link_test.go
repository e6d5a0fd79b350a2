package link

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
)

type testMsg struct {
	sim.MsgMeta
}

func (m *testMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

func (m *testMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

func newTestMsg(src, dst sim.RemotePort) *testMsg {
	m := new(testMsg)
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = src
	m.Dst = dst

	return m
}

// testAgent records the arrival time of every message delivered to it.
type testAgent struct {
	*sim.ComponentBase

	engine   sim.Engine
	Port     sim.Port
	arrivals []sim.VTimeInSec
}

func newTestAgent(name string, engine sim.Engine) *testAgent {
	a := &testAgent{engine: engine}
	a.ComponentBase = sim.NewComponentBase(name)
	a.Port = sim.NewPort(a, 4, 4, name+".Port")
	a.AddPort("Port", a.Port)

	return a
}

func (a *testAgent) Handle(_ sim.Event) error {
	return nil
}

func (a *testAgent) NotifyRecv(port sim.Port) {
	for {
		msg := port.RetrieveIncoming()
		if msg == nil {
			return
		}

		a.arrivals = append(a.arrivals, a.engine.CurrentTime())
	}
}

func (a *testAgent) NotifyPortFree(_ sim.Port) {
}

var _ = Describe("Link", func() {
	var (
		engine *sim.SerialEngine
		agentA *testAgent
		agentB *testAgent
		l      *Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		agentA = newTestAgent("AgentA", engine)
		agentB = newTestAgent("AgentB", engine)

		l = MakeBuilder().
			WithEngine(engine).
			WithLatency(1.5).
			Build("Link")
		l.PlugIn(agentA.Port)
		l.PlugIn(agentB.Port)
	})

	It("should deliver after the fixed latency", func() {
		msg := newTestMsg(agentA.Port.AsRemote(), agentB.Port.AsRemote())

		sendErr := agentA.Port.Send(msg)
		Expect(sendErr).To(BeNil())

		runErr := engine.Run()
		Expect(runErr).To(BeNil())

		Expect(agentB.arrivals).To(HaveLen(1))
		Expect(agentB.arrivals[0]).To(Equal(sim.VTimeInSec(1.5)))
	})

	It("should carry traffic in both directions", func() {
		toB := newTestMsg(agentA.Port.AsRemote(), agentB.Port.AsRemote())
		toA := newTestMsg(agentB.Port.AsRemote(), agentA.Port.AsRemote())

		Expect(agentA.Port.Send(toB)).To(BeNil())
		Expect(agentB.Port.Send(toA)).To(BeNil())

		Expect(engine.Run()).To(BeNil())

		Expect(agentA.arrivals).To(HaveLen(1))
		Expect(agentB.arrivals).To(HaveLen(1))
	})

	It("should refuse a third end", func() {
		agentC := newTestAgent("AgentC", engine)

		Expect(func() {
			l.PlugIn(agentC.Port)
		}).To(Panic())
	})
})
