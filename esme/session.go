package esme

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linxGnu/gosmpp/data"
	"github.com/linxGnu/gosmpp/pdu"
	"github.com/yyliziqiu/gdk/xuid"
)

type SessionConfig struct {
	EnquireLink time.Duration                  // liveness probe interval once bound, 0 disables
	WindowSize  int                            // max outstanding submissions
	WindowWait  time.Duration                  // per-request expiry, < 0 disables the sweep
	WindowClear time.Duration                  // expiry sweep interval
	OnReceive   func(*Session, Message)        // inbound mobile-originated message
	OnDlr       func(*Session, Dlr)            // inbound delivery receipt
	OnClosed    func(*Session, string, string) // session terminated: reason, desc
}

// Session drives one client connection through connect, bind and bound
// traffic. All state transitions and window registrations happen on a
// single event-loop goroutine, in the order events arrive; watchers are the
// only other concurrent unit and touch the session through the window only.
type Session struct {
	id     string
	conn   Connection
	conf   *SessionConfig
	seq    *sequencer
	window *Window
	ka     *keepalive

	state    int32
	ctx      context.Context
	cancel   context.CancelFunc
	commands chan *command
	inbound  chan inboundEvent

	// owned by the event loop
	backlog []*command
	binding *command
	bindSeq int32

	mu       sync.Mutex
	systemId string
	closeErr error

	initAt time.Time
	dialAt time.Time
}

type command struct {
	kind    int
	bind    BindConfig
	msg     Message
	receipt chan Ack   // submissions
	done    chan error // bind
}

const (
	cmdBind int = iota
	cmdSubmit
	cmdEnquireLink
	cmdClose
)

type inboundEvent struct {
	pdu pdu.PDU
	err error
}

// NewSession dials the transport and starts the session loops. On success
// the session awaits a Bind command; a dial failure is fatal, there is no
// retry.
func NewSession(conn Connection, conf SessionConfig) (*Session, error) {
	if conf.WindowSize == 0 {
		conf.WindowSize = 100
	}
	if conf.WindowWait == 0 {
		conf.WindowWait = 10 * time.Minute
	}
	if conf.WindowClear == 0 {
		conf.WindowClear = time.Minute
	}

	s := &Session{
		id:       xuid.Get(),
		conn:     conn,
		conf:     &conf,
		state:    StateConnecting,
		commands: make(chan *command, 64),
		inbound:  make(chan inboundEvent, 16),
		initAt:   time.Now(),
	}
	s.window = NewWindow(conf.WindowSize, conf.WindowWait)
	s.seq = newSequencer(s.window.Has)

	if err := conn.Dial(); err != nil {
		s.setState(StateTerminated)
		logWarn("[Session@%s] Dial failed, peer addr: %s, error: %v", s.id, conn.PeerAddr(), err)
		return nil, err
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.dialAt = time.Now()
	s.setState(StateAwaitingBind)

	go s.loopRead()
	go s.run()

	_store.AddSession(s)
	logInfo("[Session@%s] Dial succeed, peer addr: %s", s.id, s.PeerAddr())

	return s, nil
}

// Bind negotiates the session role and blocks until the peer answers or the
// session terminates. A rejected bind is fatal; it is never retried.
func (s *Session) Bind(conf BindConfig) error {
	c := &command{kind: cmdBind, bind: conf, done: make(chan error, 1)}
	if err := s.enqueue(c); err != nil {
		return err
	}

	select {
	case err := <-c.done:
		return err
	case <-s.ctx.Done():
		select {
		case err := <-c.done:
			return err
		default:
			return s.terminationErr()
		}
	}
}

// SendMessage submits one message and returns immediately; the ack arrives
// asynchronously on the receipt, exactly once.
func (s *Session) SendMessage(msg Message) (*Receipt, error) {
	receipt := make(chan Ack, 1)
	c := &command{kind: cmdSubmit, msg: msg, receipt: receipt}
	if err := s.enqueue(c); err != nil {
		return nil, err
	}
	return &Receipt{C: receipt}, nil
}

// Close terminates the session, sending an unbind to the peer. Outstanding
// submissions fail with ErrSessionClosed.
func (s *Session) Close() {
	_ = s.enqueue(&command{kind: cmdClose})
}

func (s *Session) enqueue(c *command) error {
	if s.getState() == StateTerminated {
		return s.terminationErr()
	}

	select {
	case s.commands <- c:
	case <-s.ctx.Done():
		return s.terminationErr()
	}

	// lost the race with termination: the drain may already have run, so
	// answer the command here; duplicate answers are dropped by the
	// buffered channels
	if s.getState() == StateTerminated {
		s.failCommand(c, s.terminationErr())
	}

	return nil
}

func (s *Session) loopRead() {
	for {
		p, err := s.conn.Read()
		if err != nil {
			select {
			case s.inbound <- inboundEvent{err: err}:
			case <-s.ctx.Done():
			}
			return
		}

		select {
		case s.inbound <- inboundEvent{pdu: p}:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) run() {
	var sweep <-chan time.Time
	if s.conf.WindowWait > 0 {
		t := time.NewTicker(s.conf.WindowClear)
		defer t.Stop()
		sweep = t.C
	}

	for {
		select {
		case ev := <-s.inbound:
			if ev.err != nil {
				logWarn("[Session@%s:%s] Read failed, error: %v", s.id, s.SystemId(), ev.err)
				s.terminate(CloseByError, ev.err.Error(), ErrSessionClosed)
				return
			}
			if s.handlePdu(ev.pdu) {
				return
			}
		case c := <-s.commands:
			if s.handleCommand(c) {
				return
			}
		case <-sweep:
			expired := s.window.TakeExpired()
			for _, wt := range expired {
				wt.fail(ErrResponseTimeout)
			}
			if len(expired) > 0 {
				logDebug("[Session@%s:%s] Expired requests, count: %d", s.id, s.SystemId(), len(expired))
			}
		}
	}
}

// handleCommand reports true when the session terminated.
func (s *Session) handleCommand(c *command) bool {
	switch c.kind {
	case cmdClose:
		s.terminate(CloseByExplicit, "", ErrSessionClosed)
		return true
	case cmdBind:
		return s.handleBind(c)
	case cmdSubmit:
		if s.getState() != StateBound {
			// stash until the bind resolves, replayed in arrival order
			s.backlog = append(s.backlog, c)
			return false
		}
		s.submit(c)
		return s.getState() == StateTerminated
	case cmdEnquireLink:
		if s.getState() != StateBound {
			return false
		}
		// fire and forget, the reply is not correlated through the window
		return s.send(enquireLink(s.seq.next()))
	}
	return false
}

func (s *Session) handleBind(c *command) bool {
	if s.getState() != StateAwaitingBind {
		c.done <- ErrAlreadyBound
		return false
	}

	s.setSystemId(c.bind.SystemId)
	s.bindSeq = s.seq.next()
	s.binding = c
	s.setState(StateBinding)

	logInfo("[Session@%s:%s] Binding, mode: %s", s.id, s.SystemId(), c.bind.Mode)

	return s.send(bindRequest(c.bind, s.bindSeq))
}

func (s *Session) submit(c *command) {
	seq := s.seq.next()

	p, err := submitRequest(c.msg, seq)
	if err != nil {
		deliverFailure(c.receipt, err)
		return
	}

	wt := newWatcher([]int32{seq}, c.receipt)
	if err = s.window.Put(seq, wt); err != nil {
		logError("[Session@%s:%s] Window put failed, sequence: %d, error: %v", s.id, s.SystemId(), seq, err)
		wt.fail(err)
		return
	}

	// a write failure terminates the session, which drains the window and
	// fails the watcher just registered
	s.send(p)
}

// handlePdu reports true when the session terminated.
func (s *Session) handlePdu(p pdu.PDU) bool {
	switch s.getState() {
	case StateBinding:
		return s.handleBindingPdu(p)
	case StateBound:
		return s.handleBoundPdu(p)
	default:
		logDebug("[Session@%s:%s] Dropped pdu in state %s, type: %T", s.id, s.SystemId(), stateName(s.getState()), p)
		return false
	}
}

func (s *Session) handleBindingPdu(p pdu.PDU) bool {
	rp, ok := p.(*pdu.BindResp)
	if !ok || rp.GetSequenceNumber() != s.bindSeq {
		logInfo("[Session@%s:%s] Ignored pdu while binding, type: %T", s.id, s.SystemId(), p)
		return false
	}

	c := s.binding
	s.binding = nil

	if rp.CommandStatus != data.ESME_ROK {
		err := NewBindError(rp.CommandStatus)
		logWarn("[Session@%s:%s] Bind rejected, status: %d", s.id, s.SystemId(), rp.CommandStatus)
		c.done <- err
		s.terminate(CloseByBind, err.Error(), err)
		return true
	}

	s.setState(StateBound)
	logInfo("[Session@%s:%s] Bound", s.id, s.SystemId())

	if s.conf.EnquireLink > 0 {
		s.ka = startKeepalive(s.conf.EnquireLink, s.fireEnquireLink)
	}

	c.done <- nil

	// replay submissions stashed before the bind resolved
	backlog := s.backlog
	s.backlog = nil
	for i, bc := range backlog {
		s.submit(bc)
		if s.getState() == StateTerminated {
			// terminate already drained, answer the rest here
			for _, rest := range backlog[i+1:] {
				s.failCommand(rest, s.terminationErr())
			}
			return true
		}
	}

	return false
}

func (s *Session) handleBoundPdu(p pdu.PDU) bool {
	switch v := p.(type) {
	case *pdu.SubmitSMResp:
		wt := s.window.Take(v.GetSequenceNumber())
		if wt == nil {
			// duplicate or stale ack, never an error to any caller
			logInfo("[Session@%s:%s] Unmatched submit resp, sequence: %d", s.id, s.SystemId(), v.GetSequenceNumber())
			return false
		}
		wt.resolve(ackPart(v))
		return false
	case *pdu.EnquireLink:
		logDebug("[Session@%s:%s] Received enquire link pdu", s.id, s.SystemId())
		return s.send(v.GetResponse())
	case *pdu.EnquireLinkResp:
		// liveness is implicit in any traffic, nothing to clear
		return false
	case *pdu.DeliverSM:
		return s.deliver(v)
	case *pdu.Unbind:
		logInfo("[Session@%s:%s] Received unbind pdu", s.id, s.SystemId())
		if s.send(v.GetResponse()) {
			return true
		}
		s.terminate(CloseByPdu, "received unbind", ErrSessionClosed)
		return true
	case *pdu.UnbindResp:
		s.terminate(CloseByPdu, "received unbind response", ErrSessionClosed)
		return true
	default:
		if gn, ok := p.(*pdu.GenericNack); ok {
			// never nack a nack
			logInfo("[Session@%s:%s] Received generic nack, status: %d", s.id, s.SystemId(), gn.CommandStatus)
			return false
		}
		logInfo("[Session@%s:%s] Unsupported pdu, type: %T, sequence: %d", s.id, s.SystemId(), p, p.GetSequenceNumber())
		return s.send(genericNack(p.GetSequenceNumber()))
	}
}

func (s *Session) deliver(p *pdu.DeliverSM) bool {
	msg, err := deliverEvent(p)
	switch {
	case err != nil:
		logWarn("[Session@%s:%s] Decode deliver failed, error: %v", s.id, s.SystemId(), err)
	case isDlr(p) && s.conf.OnDlr != nil:
		dlr, derr := ParseDlr(msg.Content)
		if derr != nil {
			logWarn("[Session@%s:%s] Parse receipt failed, error: %v", s.id, s.SystemId(), derr)
		} else {
			s.conf.OnDlr(s, dlr)
		}
	case s.conf.OnReceive != nil:
		s.conf.OnReceive(s, msg)
	}

	return s.send(p.GetResponse())
}

// send writes one PDU; a transport failure is fatal to the session.
// Reports true when the session terminated.
func (s *Session) send(p pdu.PDU) bool {
	if _, err := s.conn.Write(p); err != nil {
		logWarn("[Session@%s:%s] Write failed, error: %v", s.id, s.SystemId(), err)
		s.terminate(CloseByError, err.Error(), ErrSessionClosed)
		return true
	}
	return false
}

func (s *Session) fireEnquireLink() {
	select {
	case s.commands <- &command{kind: cmdEnquireLink}:
	case <-s.ctx.Done():
	}
}

// terminate moves the session to its terminal state: every buffered
// command, outstanding watcher and future command is answered with a
// failure, never silently dropped. Runs on the event loop.
func (s *Session) terminate(reason string, desc string, cause error) {
	if s.getState() == StateTerminated {
		return
	}
	s.setState(StateTerminated)
	s.setTerminationErr(cause)

	logInfo("[Session@%s:%s] Closing, reason: %s, desc: %s", s.id, s.SystemId(), reason, desc)

	if s.ka != nil {
		s.ka.Stop()
	}

	if s.binding != nil {
		deliverDone(s.binding.done, cause)
		s.binding = nil
	}

	for _, c := range s.backlog {
		deliverFailure(c.receipt, cause)
	}
	s.backlog = nil

	for _, wt := range s.window.Drain() {
		wt.fail(cause)
	}

	s.cancel()

	// let a blocked read time out instead of lingering
	_ = s.conn.SetDeadline(time.Now().Add(300 * time.Millisecond))

	for {
		select {
		case c := <-s.commands:
			s.failCommand(c, cause)
		default:
			_ = s.conn.Close(reason == CloseByExplicit)
			_store.DelSession(s.id)
			logInfo("[Session@%s:%s] Closed", s.id, s.SystemId())
			if s.conf.OnClosed != nil {
				s.conf.OnClosed(s, reason, desc)
			}
			return
		}
	}
}

func (s *Session) failCommand(c *command, cause error) {
	switch c.kind {
	case cmdBind:
		deliverDone(c.done, cause)
	case cmdSubmit:
		deliverFailure(c.receipt, cause)
	}
}

func deliverFailure(receipt chan Ack, err error) {
	select {
	case receipt <- Ack{Err: err}:
	default:
	}
}

func deliverDone(done chan error, err error) {
	select {
	case done <- err:
	default:
	}
}

// terminationErr is the error every command fails with after the session
// terminated: the rejection status if the bind failed, otherwise a plain
// session-closed error.
func (s *Session) terminationErr() error {
	s.mu.Lock()
	err := s.closeErr
	s.mu.Unlock()

	var be *BindError
	if errors.As(err, &be) {
		return err
	}
	return ErrSessionClosed
}

func (s *Session) setTerminationErr(err error) {
	s.mu.Lock()
	s.closeErr = err
	s.mu.Unlock()
}

func (s *Session) getState() int32 {
	return atomic.LoadInt32(&s.state)
}

func (s *Session) setState(state int32) {
	atomic.StoreInt32(&s.state, state)
}

func (s *Session) setSystemId(id string) {
	s.mu.Lock()
	s.systemId = id
	s.mu.Unlock()
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) State() int32 {
	return s.getState()
}

func (s *Session) SystemId() string {
	s.mu.Lock()
	id := s.systemId
	s.mu.Unlock()
	return id
}

func (s *Session) SelfAddr() string {
	return s.conn.SelfAddr()
}

func (s *Session) PeerAddr() string {
	return s.conn.PeerAddr()
}

func (s *Session) InitAt() time.Time {
	return s.initAt
}

func (s *Session) DialAt() time.Time {
	return s.dialAt
}

func (s *Session) Bound() bool {
	return s.getState() == StateBound
}

func (s *Session) Closed() bool {
	return s.getState() == StateTerminated
}

func (s *Session) Outstanding() int {
	return s.window.Len()
}
