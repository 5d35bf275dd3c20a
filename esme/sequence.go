package esme

import (
	"sync/atomic"
)

// sequencer hands out correlation sequence numbers for one session. Values
// run 1..maxSequence; on exhaustion the counter restarts at 1 and any
// candidate still present in the window is skipped, so an in-flight request
// is never aliased by a wrapped number.
type sequencer struct {
	last    uint32
	pending func(int32) bool
}

func newSequencer(pending func(int32) bool) *sequencer {
	return &sequencer{pending: pending}
}

func (g *sequencer) next() int32 {
	for {
		n := atomic.AddUint32(&g.last, 1)
		if n > maxSequence {
			atomic.CompareAndSwapUint32(&g.last, n, 0)
			continue
		}
		seq := int32(n)
		if g.pending != nil && g.pending(seq) {
			continue
		}
		return seq
	}
}
