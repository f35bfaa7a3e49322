package agent

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/authsock/proxy/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstream_SendReceive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upstream.sock")

	addr, err := net.ResolveUnixAddr("unix", path)
	require.NoError(t, err)
	ln, err := net.ListenUnix("unix", addr)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		req, err := protocol.ReadMessage(conn)
		if err != nil || req == nil {
			return
		}
		_ = protocol.WriteMessage(conn, protocol.Success())
	}()

	u := NewUpstream(path)
	resp, err := u.SendReceive(context.Background(), protocol.NewMessage(protocol.MessageRequestIdentities, nil))
	require.NoError(t, err)
	assert.Equal(t, protocol.MessageSuccess, resp.Type)
}

func TestUpstream_ConnectFailure(t *testing.T) {
	u := NewUpstream("/tmp/nonexistent-authsock-upstream-test.sock")
	_, err := u.SendReceive(context.Background(), protocol.NewMessage(protocol.MessageRequestIdentities, nil))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestUpstream_ClosedBeforeResponse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upstream.sock")

	addr, err := net.ResolveUnixAddr("unix", path)
	require.NoError(t, err)
	ln, err := net.ListenUnix("unix", addr)
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_, _ = protocol.ReadMessage(conn)
		conn.Close()
	}()

	u := NewUpstream(path)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = u.SendReceive(ctx, protocol.NewMessage(protocol.MessageRequestIdentities, nil))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
