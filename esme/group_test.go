package esme

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionGroupRound(t *testing.T) {
	g := NewSessionGroup(&SessionGroupConfig{GroupId: "g1", Capacity: 2})

	s1, _ := startBound(t, SessionConfig{})
	s2, _ := startBound(t, SessionConfig{})
	require.NoError(t, g.Add(s1))
	require.NoError(t, g.Add(s2))
	assert.Equal(t, 2, g.Len())

	seen := map[string]int{}
	for i := 0; i < 10; i++ {
		sess := g.Round()
		require.NotNil(t, sess)
		seen[sess.Id()]++
	}
	assert.Len(t, seen, 2)
}

func TestSessionGroupRoundSkipsClosed(t *testing.T) {
	g := NewSessionGroup(&SessionGroupConfig{GroupId: "g2", Capacity: 2})

	s1, _ := startBound(t, SessionConfig{})
	s2, _ := startBound(t, SessionConfig{})
	require.NoError(t, g.Add(s1))
	require.NoError(t, g.Add(s2))

	s1.Close()
	require.Eventually(t, s1.Closed, 2*time.Second, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		sess := g.Round()
		require.NotNil(t, sess)
		assert.Equal(t, s2.Id(), sess.Id())
	}
}

func TestSessionGroupSendMessage(t *testing.T) {
	g := NewSessionGroup(&SessionGroupConfig{GroupId: "g3", Capacity: 1})

	_, err := g.SendMessage(Message{Content: "hi", To: NewDid("123"), From: NewDid("456")})
	assert.ErrorIs(t, err, ErrNoBoundSession)

	s, conn := startBound(t, SessionConfig{})
	require.NoError(t, g.Add(s))

	receipt, err := g.SendMessage(Message{Content: "hi", To: NewDid("123"), From: NewDid("456")})
	require.NoError(t, err)

	sp := outPdu(t, conn)
	conn.in <- sp.GetResponse()
	require.NoError(t, waitAck(t, receipt.C).Err)
}

func TestSessionGroupCapacity(t *testing.T) {
	g := NewSessionGroup(&SessionGroupConfig{GroupId: "g4", Capacity: 1})

	s1, _ := startBound(t, SessionConfig{})
	s2, _ := startBound(t, SessionConfig{})
	require.NoError(t, g.Add(s1))
	assert.Error(t, g.Add(s2))
	s2.Close()
}

func TestSessionGroupAutoFill(t *testing.T) {
	created := 0
	g := NewSessionGroup(&SessionGroupConfig{
		GroupId:  "g5",
		Capacity: 2,
		AutoFill: true,
		Create: func(*SessionGroup) (*Session, error) {
			created++
			s, _ := startBound(t, SessionConfig{})
			return s, nil
		},
	})

	g.Adjust()
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, g.Len())
}

func TestSessionGroupCreateFailed(t *testing.T) {
	var failed error
	g := NewSessionGroup(&SessionGroupConfig{
		GroupId:  "g6",
		Capacity: 1,
		AutoFill: true,
		Create: func(*SessionGroup) (*Session, error) {
			return nil, errors.New("dial failed")
		},
		Failed: func(_ *SessionGroup, err error) {
			failed = err
		},
	})

	g.Adjust()
	assert.Error(t, failed)
	assert.Equal(t, 0, g.Len())
}

func TestSessionGroupDestroy(t *testing.T) {
	g := NewSessionGroup(&SessionGroupConfig{GroupId: "g7", Capacity: 2})

	s, _ := startBound(t, SessionConfig{})
	require.NoError(t, g.Add(s))

	g.Destroy()
	assert.Equal(t, 0, g.Len())
	require.Eventually(t, s.Closed, 2*time.Second, 10*time.Millisecond)

	assert.Error(t, g.Add(s))
}
