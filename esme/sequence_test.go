package esme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerIncreasing(t *testing.T) {
	g := newSequencer(nil)

	prev := int32(0)
	for i := 0; i < 1000; i++ {
		seq := g.next()
		require.Greater(t, seq, prev)
		prev = seq
	}
}

func TestSequencerWrap(t *testing.T) {
	g := newSequencer(nil)
	g.last = maxSequence - 1

	assert.EqualValues(t, maxSequence, g.next())
	assert.EqualValues(t, 1, g.next())
	assert.EqualValues(t, 2, g.next())
}

func TestSequencerWrapSkipsPending(t *testing.T) {
	outstanding := map[int32]bool{1: true, 2: true}
	g := newSequencer(func(seq int32) bool { return outstanding[seq] })
	g.last = maxSequence - 1

	assert.EqualValues(t, maxSequence, g.next())
	// 1 and 2 are still in the window after the wrap, never hand them out
	assert.EqualValues(t, 3, g.next())
}
