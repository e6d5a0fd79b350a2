package driver

import (
	"sort"
	"sync"
)

// Tally collects the distributed quiescence vote. Every LP registers at
// construction and releases its vote once its next candidate event
// could only land at or beyond the stop time. The tally is advisory:
// the run ends when the event queue drains, and the tally reports which
// LPs never released.
type Tally struct {
	sync.Mutex

	open map[int]bool
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{
		open: make(map[int]bool),
	}
}

// DoNotEndSim registers LP id as holding the run open.
func (t *Tally) DoNotEndSim(id int) {
	t.Lock()
	defer t.Unlock()

	t.open[id] = true
}

// OKToEndSim releases LP id's hold on the run.
func (t *Tally) OKToEndSim(id int) {
	t.Lock()
	defer t.Unlock()

	delete(t.open, id)
}

// AllReleased reports whether every registered LP has voted to end.
func (t *Tally) AllReleased() bool {
	t.Lock()
	defer t.Unlock()

	return len(t.open) == 0
}

// Outstanding returns the ids of the LPs still holding the run open.
func (t *Tally) Outstanding() []int {
	t.Lock()
	defer t.Unlock()

	ids := make([]int, 0, len(t.open))
	for id := range t.open {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}
