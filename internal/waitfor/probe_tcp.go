package waitfor

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPProbe reports a dependency reachable once a TCP connection to its
// host:port succeeds. No protocol handshake is attempted.
type TCPProbe struct {
	name        string
	addr        string
	dialTimeout time.Duration
}

// NewTCPProbe creates a probe for addr ("host:port").
func NewTCPProbe(name, addr string, dialTimeout time.Duration) *TCPProbe {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &TCPProbe{name: name, addr: addr, dialTimeout: dialTimeout}
}

func (p *TCPProbe) Name() string { return p.name }

func (p *TCPProbe) Addr() string { return p.addr }

// Check dials the endpoint and closes the connection immediately.
func (p *TCPProbe) Check(ctx context.Context) error {
	dialer := net.Dialer{Timeout: p.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.addr, err)
	}
	return conn.Close()
}
