// Package agent implements the endpoint side of the proxy: the upstream
// connector, the listening socket, the per-endpoint allow-set, and the
// mediator that enforces the listing and signing invariants.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/authsock/proxy/internal/protocol"
)

// DefaultUpstreamTimeout bounds both connecting to the upstream agent and a
// full one-shot send/receive round trip.
const DefaultUpstreamTimeout = 10 * time.Second

// ErrUpstreamUnavailable wraps any failure to reach or round-trip with the
// upstream agent: connect failure, timeout, or mid-roundtrip EOF.
var ErrUpstreamUnavailable = errors.New("agent: upstream unavailable")

// Upstream connects to a privileged upstream agent over a Unix socket. Each
// round trip opens a fresh connection; there is no pooling, which keeps
// interleaving between concurrent sessions trivial to reason about.
type Upstream struct {
	socketPath string
	timeout    time.Duration
}

// NewUpstream builds an Upstream bound to socketPath with the default timeout.
func NewUpstream(socketPath string) *Upstream {
	return &Upstream{socketPath: socketPath, timeout: DefaultUpstreamTimeout}
}

// SocketPath reports the upstream socket path.
func (u *Upstream) SocketPath() string { return u.socketPath }

// SendReceive opens a fresh connection to the upstream, writes req, reads
// exactly one response, and closes the connection. A connect failure or
// timeout, or an end-of-stream before any response is read, surfaces as
// ErrUpstreamUnavailable.
func (u *Upstream) SendReceive(ctx context.Context, req *protocol.Message) (*protocol.Message, error) {
	dialer := net.Dialer{Timeout: u.timeout}
	conn, err := dialer.DialContext(ctx, "unix", u.socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", ErrUpstreamUnavailable, u.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(u.timeout))
	}

	if err := protocol.WriteMessage(conn, req); err != nil {
		return nil, fmt.Errorf("%w: writing to %s: %v", ErrUpstreamUnavailable, u.socketPath, err)
	}

	resp, err := protocol.ReadMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: reading from %s: %v", ErrUpstreamUnavailable, u.socketPath, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: %s closed connection unexpectedly", ErrUpstreamUnavailable, u.socketPath)
	}
	return resp, nil
}
