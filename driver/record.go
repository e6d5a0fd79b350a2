package driver

import "github.com/sirupsen/logrus"

type lpStatsEntry struct {
	LPID           int
	SendCount      uint64
	RecvCount      uint64
	TargetRetries  uint64
	AnomalousRecvs uint64
	VotedToEnd     bool
}

type runSummaryEntry struct {
	RunID          string
	NumLPs         int
	InitialEvents  int
	RemoteFraction float64
	MinDelay       float64
	AvgDelay       float64
	StopTime       float64
	EndTime        float64
	TotalSendCount uint64
	TotalRecvCount uint64
	InFlightAtStop uint64
}

type delayQuantileEntry struct {
	LPID         int
	Quantile     float64
	DelaySeconds float64
}

var delayQuantiles = []float64{0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99}

// recordStats dumps the run summary, the per-LP counters, and, when
// delay digests are enabled, the per-LP delay quantiles.
func (d *Driver) recordStats() {
	if d.recorder == nil {
		return
	}

	d.recordRunSummary()
	d.recordLPStats()

	if d.cfg.OutputDelayHistogram {
		d.recordDelayQuantiles()
	}

	d.recorder.Flush()
	logrus.Debugf("run %s stats recorded", d.runID)
}

func (d *Driver) recordRunSummary() {
	grandSend, grandRecv := d.lps[0].GrandTotals()

	d.recorder.CreateTable("run_summary", runSummaryEntry{})
	d.recorder.InsertData("run_summary", runSummaryEntry{
		RunID:          d.runID,
		NumLPs:         d.cfg.NumLPs,
		InitialEvents:  d.cfg.InitialEvents,
		RemoteFraction: d.cfg.RemoteFraction,
		MinDelay:       float64(d.cfg.MinDelay),
		AvgDelay:       float64(d.cfg.AvgDelay),
		StopTime:       float64(d.cfg.StopTime),
		EndTime:        float64(d.engine.CurrentTime()),
		TotalSendCount: grandSend,
		TotalRecvCount: grandRecv,
		InFlightAtStop: grandSend - grandRecv,
	})
}

func (d *Driver) recordLPStats() {
	d.recorder.CreateTable("lp_stats", lpStatsEntry{})

	for _, lp := range d.lps {
		stats := lp.Stats()
		d.recorder.InsertData("lp_stats", lpStatsEntry{
			LPID:           lp.ID(),
			SendCount:      stats.SendCount,
			RecvCount:      stats.RecvCount,
			TargetRetries:  stats.TargetRetries,
			AnomalousRecvs: stats.AnomalousRecvs,
			VotedToEnd:     lp.Voted(),
		})
	}
}

func (d *Driver) recordDelayQuantiles() {
	d.recorder.CreateTable("delay_quantiles", delayQuantileEntry{})

	for _, lp := range d.lps {
		digest := lp.Stats().Delays
		if digest == nil || digest.Count() == 0 {
			continue
		}

		for _, q := range delayQuantiles {
			d.recorder.InsertData("delay_quantiles", delayQuantileEntry{
				LPID:         lp.ID(),
				Quantile:     q,
				DelaySeconds: digest.Quantile(q),
			})
		}
	}
}
