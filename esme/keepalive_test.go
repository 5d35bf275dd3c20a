package esme

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepaliveFires(t *testing.T) {
	var fired int32
	k := startKeepalive(10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	defer k.Stop()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestKeepaliveStop(t *testing.T) {
	var fired int32
	k := startKeepalive(10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	k.Stop()
	n := atomic.LoadInt32(&fired)
	time.Sleep(50 * time.Millisecond)
	// at most one probe could have been in flight when Stop hit
	assert.LessOrEqual(t, atomic.LoadInt32(&fired), n+1)

	// idempotent
	k.Stop()
}
