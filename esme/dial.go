package esme

import (
	"crypto/tls"
	"net"
	"time"
)

// Dial opens the raw transport a client connection runs over.
type Dial func(addr string) (net.Conn, error)

// Ready-made dialers with no connect timeout.
var (
	DefaultDial = TcpDial(0)

	DefaultTlsDial = TlsDial("", 0)
)

// TcpDial returns a plain TCP dialer. A zero timeout blocks until the
// operating system gives up.
func TcpDial(timeout time.Duration) Dial {
	return func(addr string) (net.Conn, error) {
		return net.DialTimeout("tcp", addr, timeout)
	}
}

// TlsDial returns a TLS dialer. The peer certificate is verified against
// domain; an empty domain skips verification.
func TlsDial(domain string, timeout time.Duration) Dial {
	return func(addr string) (net.Conn, error) {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return nil, err
		}

		cli := tls.Client(conn, &tls.Config{
			InsecureSkipVerify: domain == "",
			ServerName:         domain,
		})

		if err = cli.Handshake(); err != nil {
			_ = conn.Close()
			return nil, err
		}

		return cli, nil
	}
}
