package phold

import (
	"log"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/phold/bintree"
)

// The setup broadcast and teardown reduction index the LPs as a
// complete binary tree: LP 0 is the root, every id > 0 has parent
// (id-1)/2, and child indices at or beyond the population simply do
// not exist.

func treeDepthOfLast(n int) int {
	return bintree.Depth(n - 1)
}

// Init runs one phase of the setup broadcast. The host must call it
// with phase = 0 through MaxTreeDepth, with a full barrier between
// phases. When the last phase has run, every LP holds exactly one
// token.
func (c *Comp) Init(phase int) {
	depth := bintree.Depth(c.id)

	switch {
	case phase < depth:
		c.phaseMustBeQuiet("init", "early", phase)
	case phase == depth:
		c.receiveAndForwardToken(phase)
	default:
		c.phaseMustBeQuiet("init", "late", phase)
	}
}

func (c *Comp) receiveAndForwardToken(phase int) {
	if c.id > 0 {
		parent := bintree.Parent(c.id)

		delivery, ok := c.phase.Receive()
		if !ok {
			log.Panicf(
				"init phase %d: LP %d expected a token from parent %d, got none",
				phase, c.id, parent)
		}

		token, isToken := delivery.Payload.(Token)
		if !isToken {
			log.Panicf(
				"init phase %d: LP %d received a %T instead of a token",
				phase, c.id, delivery.Payload)
		}

		if delivery.From != parent || token.Sender != parent {
			log.Panicf(
				"init phase %d: LP %d expected its token from parent %d, "+
					"got one from %d declaring sender %d",
				phase, c.id, parent, delivery.From, token.Sender)
		}
	}

	c.hasToken = true
	logrus.Debugf("init phase %d: LP %d holds its token", phase, c.id)

	left, right := bintree.Children(c.id)
	for _, child := range [2]int{left, right} {
		if child >= c.cfg.NumLPs {
			continue // the tree is only partially populated
		}

		c.phase.Send(child, Token{Sender: c.id})
	}

	c.phaseMustBeQuiet("init", "on-time", phase)
}

// Complete runs one phase of the teardown reduction. It mirrors Init
// but runs leaves-first: during phase p an LP acts if its depth equals
// MaxTreeDepth - p. When the last phase has run, the root holds the
// tree-wide send and receive totals.
func (c *Comp) Complete(phase int) {
	depth := bintree.Depth(c.id)
	effective := c.cfg.MaxTreeDepth() - phase

	switch {
	case effective > depth:
		c.phaseMustBeQuiet("complete", "early", phase)
	case effective == depth:
		c.reduceAndForwardCounts(phase)
	default:
		c.phaseMustBeQuiet("complete", "late", phase)
	}
}

func (c *Comp) reduceAndForwardCounts(phase int) {
	children := c.existingChildren()

	reports := make(map[int]Report, len(children))
	for range children {
		delivery, ok := c.phase.Receive()
		if !ok {
			log.Panicf(
				"complete phase %d: LP %d has %d children but fewer reports",
				phase, c.id, len(children))
		}

		report, isReport := delivery.Payload.(Report)
		if !isReport {
			log.Panicf(
				"complete phase %d: LP %d received a %T instead of a report",
				phase, c.id, delivery.Payload)
		}

		if _, dup := reports[delivery.From]; dup {
			log.Panicf(
				"complete phase %d: LP %d received two reports from %d",
				phase, c.id, delivery.From)
		}

		reports[delivery.From] = report
	}

	totalSend := c.stats.SendCount
	totalRecv := c.stats.RecvCount

	for _, child := range children {
		report, ok := reports[child]
		if !ok {
			log.Panicf(
				"complete phase %d: LP %d is missing the report from child %d",
				phase, c.id, child)
		}

		totalSend += report.SendCount
		totalRecv += report.RecvCount
	}

	if c.id > 0 {
		parent := bintree.Parent(c.id)
		c.phase.Send(parent, Report{
			SendCount: totalSend,
			RecvCount: totalRecv,
		})
	} else {
		c.reduced = true
		c.grandSend = totalSend
		c.grandRecv = totalRecv

		if totalSend != totalRecv {
			// Events may legitimately be in flight at the stop time;
			// this is a property of the configuration, not an error.
			logrus.Infof(
				"grand totals differ: sent %d, received %d, %d in flight at stop",
				totalSend, totalRecv, totalSend-totalRecv)
		}
	}

	c.phaseMustBeQuiet("complete", "on-time", phase)
}

// GrandTotals returns the tree-wide totals. Only the root holds them,
// and only after the reduction has run.
func (c *Comp) GrandTotals() (sendCount, recvCount uint64) {
	if c.id != 0 || !c.reduced {
		log.Panicf("LP %d: grand totals are only on the root, after the reduction",
			c.id)
	}

	return c.grandSend, c.grandRecv
}

func (c *Comp) existingChildren() []int {
	left, right := bintree.Children(c.id)

	children := make([]int, 0, 2)
	for _, child := range [2]int{left, right} {
		if child < c.cfg.NumLPs {
			children = append(children, child)
		}
	}

	return children
}

func (c *Comp) phaseMustBeQuiet(collective, when string, phase int) {
	if n := c.phase.Pending(); n != 0 {
		log.Panicf(
			"%s phase %d (%s): LP %d has %d unexpected pending messages",
			collective, phase, when, c.id, n)
	}
}
