package phold

import (
	"log"

	tdigest "github.com/caio/go-tdigest"
	"github.com/sarchlab/akita/v4/sim"
)

// Stats accumulates one LP's counters. Collection stops at the stop
// time because the admission check stops admitting.
type Stats struct {
	// SendCount is the number of events admitted before the stop time.
	SendCount uint64

	// RecvCount is the number of events received before the stop time.
	RecvCount uint64

	// TargetRetries counts rejection-sampling redraws that hit the
	// sender itself, a diagnostic for the remote-target draw.
	TargetRetries uint64

	// AnomalousRecvs counts work events received after the LP voted to
	// end. These reflect benign races in vote propagation, never an
	// error in the workload itself.
	AnomalousRecvs uint64

	// Delays digests every sampled total delay (additional delay plus
	// minimum), in seconds. It is nil unless enabled at construction.
	Delays *tdigest.TDigest
}

func newStats(recordDelays bool) *Stats {
	s := &Stats{}

	if recordDelays {
		td, err := tdigest.New(tdigest.Compression(100))
		if err != nil {
			log.Panicf("cannot create delay digest: %v", err)
		}
		s.Delays = td
	}

	return s
}

func (s *Stats) observeDelay(total sim.VTimeInSec) {
	if s.Delays == nil {
		return
	}

	if err := s.Delays.Add(float64(total)); err != nil {
		log.Panicf("cannot record delay sample %f: %v", float64(total), err)
	}
}
