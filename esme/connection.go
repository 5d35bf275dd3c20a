package esme

import (
	"net"
	"time"

	"github.com/linxGnu/gosmpp/pdu"
)

// Connection is the transport collaborator: a reliable, ordered, full-duplex
// PDU stream. It only moves decoded PDUs; the bind negotiation itself is the
// session's job.
type Connection interface {
	Dial() error
	Read() (pdu.PDU, error)
	Write(pdu.PDU) (int, error)
	SetDeadline(time.Time) error
	SelfAddr() string
	PeerAddr() string
	Close(bye bool) error
}

func ConnAddrs(conn net.Conn) (string, string) {
	return conn.LocalAddr().String(), conn.RemoteAddr().String()
}

func ConnRead(conn net.Conn, timeout time.Duration) (pdu.PDU, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}

	return pdu.Parse(conn)
}

func ConnWrite(conn net.Conn, pd pdu.PDU, timeout time.Duration) (int, error) {
	buf := pdu.NewBuffer(make([]byte, 0, 32))
	pd.Marshal(buf)

	if timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}

	return conn.Write(buf.Bytes())
}

func ConnClose(conn net.Conn, bye bool) error {
	if bye {
		// say goodbye with an unbind, but do not wait for the unbind-resp;
		// the short sleep keeps the peer from seeing a reset
		_, _ = ConnWrite(conn, pdu.NewUnbind(), 100*time.Millisecond)
		time.Sleep(100 * time.Millisecond)
	}
	return conn.Close()
}

// ClientConnection dials the message center over TCP or TLS.
type ClientConnection struct {
	conf     *ClientConnectionConfig
	conn     net.Conn
	selfAddr string
	peerAddr string
}

type ClientConnectionConfig struct {
	Dial         Dial
	Smsc         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewClientConnection(conf ClientConnectionConfig) *ClientConnection {
	if conf.Dial == nil {
		conf.Dial = DefaultDial
	}
	return &ClientConnection{conf: &conf}
}

func (c *ClientConnection) SelfAddr() string {
	return c.selfAddr
}

func (c *ClientConnection) PeerAddr() string {
	if c.conn == nil {
		return c.conf.Smsc
	}
	return c.peerAddr
}

func (c *ClientConnection) SetDeadline(t time.Time) error {
	if c.conn == nil {
		return ErrConnectionIsNil
	}
	return c.conn.SetDeadline(t)
}

func (c *ClientConnection) Dial() error {
	if c.conn != nil {
		_ = c.conn.Close()
	}

	var err error
	c.conn, err = c.conf.Dial(c.conf.Smsc)
	if err != nil {
		return err
	}

	c.selfAddr, c.peerAddr = ConnAddrs(c.conn)

	return nil
}

func (c *ClientConnection) Read() (pdu.PDU, error) {
	return ConnRead(c.conn, c.conf.ReadTimeout)
}

func (c *ClientConnection) Write(pd pdu.PDU) (int, error) {
	return ConnWrite(c.conn, pd, c.conf.WriteTimeout)
}

func (c *ClientConnection) Close(bye bool) error {
	if c.conn == nil {
		return nil
	}
	return ConnClose(c.conn, bye)
}
