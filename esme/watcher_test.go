package esme

import (
	"testing"
	"time"

	"github.com/linxGnu/gosmpp/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAck(t *testing.T, c <-chan Ack) Ack {
	t.Helper()
	select {
	case ack := <-c:
		return ack
	case <-time.After(2 * time.Second):
		t.Fatal("no ack delivered")
		return Ack{}
	}
}

func TestWatcherResolve(t *testing.T) {
	receipt := make(chan Ack, 1)
	wt := newWatcher([]int32{5}, receipt)

	wt.resolve(AckPart{Status: data.ESME_ROK, MessageId: "m1"})

	ack := waitAck(t, receipt)
	require.NoError(t, ack.Err)
	require.Len(t, ack.Parts, 1)
	assert.Equal(t, "m1", ack.Parts[0].MessageId)
	assert.True(t, ack.Ok())
}

func TestWatcherFail(t *testing.T) {
	receipt := make(chan Ack, 1)
	wt := newWatcher([]int32{5}, receipt)

	wt.fail(ErrSessionClosed)

	ack := waitAck(t, receipt)
	assert.ErrorIs(t, ack.Err, ErrSessionClosed)
	assert.Empty(t, ack.Parts)
	assert.False(t, ack.Ok())
}

func TestWatcherDeliversOnce(t *testing.T) {
	receipt := make(chan Ack, 1)
	wt := newWatcher([]int32{5}, receipt)

	wt.resolve(AckPart{Status: data.ESME_ROK})
	wt.resolve(AckPart{Status: data.ESME_ROK})
	wt.fail(ErrSessionClosed)

	ack := waitAck(t, receipt)
	require.NoError(t, ack.Err)

	select {
	case <-receipt:
		t.Fatal("second ack delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherRejectedStatus(t *testing.T) {
	receipt := make(chan Ack, 1)
	wt := newWatcher([]int32{5}, receipt)

	wt.resolve(AckPart{Status: data.ESME_RSUBMITFAIL})

	ack := waitAck(t, receipt)
	require.NoError(t, ack.Err)
	require.Len(t, ack.Parts, 1)
	assert.False(t, ack.Ok())
	assert.Error(t, ack.Parts[0].Err())
}
