package assistant

import (
	"sync"
)

// stateBox guards the snapshot. begin is the only way into submitting, so at
// most one submission is in flight.
type stateBox struct {
	mu   sync.Mutex
	snap Snapshot
}

func (b *stateBox) get() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// begin moves to next unless a submission is in flight
func (b *stateBox) begin(next Snapshot) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snap.State == StateSubmitting {
		return false
	}
	b.snap = next
	return true
}

func (b *stateBox) set(next Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = next
}
