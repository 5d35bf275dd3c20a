package esme

import (
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/maps"
)

var ErrNoBoundSession = errors.New("no bound session in group")

// SessionGroup is a capacity-bounded set of sessions to the same peer,
// submitting round-robin over whichever members are bound.
type SessionGroup struct {
	config    *SessionGroupConfig
	sessions  map[string]*Session
	keys      []string
	round     int32
	adjusting int32
	destroyed bool
	mu        sync.RWMutex
}

type SessionGroupConfig struct {
	GroupId  string                                // group id
	Capacity int                                   // target member count
	AutoFill bool                                  // create members up to capacity on Adjust
	Create   func(*SessionGroup) (*Session, error) // dials and binds one member
	Failed   func(*SessionGroup, error)            // called when Create fails
}

func NewSessionGroup(config *SessionGroupConfig) *SessionGroup {
	return &SessionGroup{
		config:   config,
		sessions: make(map[string]*Session),
	}
}

func (g *SessionGroup) Id() string {
	return g.config.GroupId
}

// Round returns the next bound member, nil when none is usable.
func (g *SessionGroup) Round() *Session {
	var sess *Session

	g.mu.RLock()
	n := int32(len(g.keys))
	for try := int32(0); try < n; try++ {
		i := atomic.AddInt32(&g.round, 1) & maxSequence
		candidate := g.sessions[g.keys[i%n]]
		if candidate.Bound() {
			sess = candidate
			break
		}
	}
	g.mu.RUnlock()

	return sess
}

// SendMessage submits through the next bound member.
func (g *SessionGroup) SendMessage(msg Message) (*Receipt, error) {
	sess := g.Round()
	if sess == nil {
		return nil, ErrNoBoundSession
	}
	return sess.SendMessage(msg)
}

func (g *SessionGroup) Get(sessionId string) *Session {
	g.mu.RLock()
	sess := g.sessions[sessionId]
	g.mu.RUnlock()

	return sess
}

func (g *SessionGroup) Len() int {
	g.mu.RLock()
	n := len(g.keys)
	g.mu.RUnlock()

	return n
}

func (g *SessionGroup) Add(sess *Session) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return errors.New("session group has been destroyed")
	}

	if g.full() {
		return errors.New("session group is full")
	}

	g.add(sess)

	return nil
}

func (g *SessionGroup) full() bool {
	return len(g.keys) >= g.config.Capacity
}

func (g *SessionGroup) add(sess *Session) {
	g.sessions[sess.Id()] = sess
	g.keys = maps.Keys(g.sessions)
	logInfo("[SessionGroup@%s] Add session, session id: %s", g.Id(), sess.Id())
}

// Del removes and closes a member, then refills if configured to.
func (g *SessionGroup) Del(sessionId string) {
	var sess *Session

	g.mu.Lock()
	if !g.destroyed {
		sess = g.del(sessionId)
	}
	g.mu.Unlock()

	if sess != nil {
		sess.Close()
		g.Adjust()
	}
}

func (g *SessionGroup) del(sessionId string) *Session {
	sess, ok := g.sessions[sessionId]
	if ok {
		delete(g.sessions, sessionId)
		g.keys = maps.Keys(g.sessions)
		logInfo("[SessionGroup@%s] Del session, session id: %s", g.Id(), sessionId)
	} else {
		logDebug("[SessionGroup@%s] Del unknown session, session id: %s", g.Id(), sessionId)
	}
	return sess
}

// Adjust converges the group to its capacity.
func (g *SessionGroup) Adjust() {
	if !g.config.AutoFill || g.config.Create == nil {
		return
	}

	if !atomic.CompareAndSwapInt32(&g.adjusting, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&g.adjusting, 0)

	g.mu.RLock()
	diff := g.config.Capacity - len(g.keys)
	destroyed := g.destroyed
	g.mu.RUnlock()

	if destroyed {
		return
	}

	for i := 0; i < diff; i++ {
		g.create()
	}

	for i := diff; i < 0; i++ {
		if sess := g.remove(); sess != nil {
			sess.Close()
		}
	}
}

func (g *SessionGroup) create() {
	sess, err := g.config.Create(g)
	if err != nil {
		if g.config.Failed != nil {
			g.config.Failed(g, err)
		}
		logWarn("[SessionGroup@%s] Create session failed, error: %v", g.Id(), err)
		return
	}

	if err = g.Add(sess); err != nil {
		sess.Close()
		return
	}

	logInfo("[SessionGroup@%s] Create session, session id: %s", g.Id(), sess.Id())
}

func (g *SessionGroup) remove() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.keys) == 0 || g.destroyed {
		return nil
	}

	return g.del(g.keys[0])
}

// Capacity resizes the group and converges it.
func (g *SessionGroup) Capacity(n int) {
	g.mu.Lock()
	g.config.Capacity = n
	g.mu.Unlock()

	g.Adjust()
}

// Destroy closes every member and blocks further use.
func (g *SessionGroup) Destroy() {
	g.mu.Lock()
	g.destroyed = true
	sessions := maps.Values(g.sessions)
	g.sessions = make(map[string]*Session)
	g.keys = nil
	g.mu.Unlock()

	logInfo("[SessionGroup@%s] Destroy", g.Id())

	for _, sess := range sessions {
		sess.Close()
	}
}
