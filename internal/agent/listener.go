package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
)

// ErrSymlinkRefused is returned by Bind when the target path already exists
// and is a symbolic link. Unlinking it unconditionally would let an
// attacker who can create a symlink at the path redirect the bind onto an
// arbitrary file; refusing is the safe default.
var ErrSymlinkRefused = errors.New("agent: refusing to bind over a symlink")

// Listener owns one endpoint's Unix socket: bind, accept loop, and cleanup.
type Listener struct {
	path string
	ln   *net.UnixListener
}

// NewListener builds a Listener for the given socket path. Bind must be
// called before Run.
func NewListener(path string) *Listener {
	return &Listener{path: path}
}

// Path reports the socket path this listener binds to.
func (l *Listener) Path() string { return l.path }

// Bind prepares and creates the listening socket:
//   - if a stale file exists at the path, it is removed, unless it is a
//     symlink, in which case Bind refuses (ErrSymlinkRefused) without
//     touching it;
//   - missing ancestor directories are created;
//   - the socket is created and its mode set to owner-only (0o600).
func (l *Listener) Bind() error {
	info, err := os.Lstat(l.path)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s", ErrSymlinkRefused, l.path)
		}
		if err := os.Remove(l.path); err != nil {
			return fmt.Errorf("agent: removing stale socket %s: %w", l.path, err)
		}
	case os.IsNotExist(err):
		// Nothing to clean up.
	default:
		return fmt.Errorf("agent: stat %s: %w", l.path, err)
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("agent: creating parent directory %s: %w", dir, err)
		}
	}

	addr, err := net.ResolveUnixAddr("unix", l.path)
	if err != nil {
		return fmt.Errorf("agent: resolving socket address %s: %w", l.path, err)
	}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("agent: binding socket %s: %w", l.path, err)
	}
	if err := os.Chmod(l.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("agent: setting socket permissions on %s: %w", l.path, err)
	}

	l.ln = ln
	slog.Info("endpoint listening", "path", l.path)
	return nil
}

// Handler processes one accepted client connection.
type Handler func(ctx context.Context, conn net.Conn)

// Run accepts connections until ctx is cancelled, spawning an independent
// goroutine running handler for each one. A single failing accept is
// logged and does not stop the loop.
func (l *Listener) Run(ctx context.Context, handler Handler) error {
	if l.ln == nil {
		return fmt.Errorf("agent: listener for %s is not bound", l.path)
	}

	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("accept failed", "path", l.path, "error", err)
			continue
		}
		go handler(ctx, conn)
	}
}

// Close unlinks the socket path on a best-effort basis.
func (l *Listener) Close() error {
	if l.ln != nil {
		_ = l.ln.Close()
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove socket file during cleanup", "path", l.path, "error", err)
		return err
	}
	return nil
}
