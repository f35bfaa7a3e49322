package filter

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/authsock/proxy/internal/identity"
)

// recognizedKeyPrefixes are the authorized_keys key-type tokens this
// matcher searches a line for, in order to strip any leading options
// string ("no-agent-forwarding ssh-ed25519 AAAA...") before parsing.
var recognizedKeyPrefixes = []string{
	"ssh-ed25519",
	"ssh-rsa",
	"ssh-dss",
	"ecdsa-sha2-",
	"sk-ssh-ed25519",
	"sk-ecdsa-sha2-",
}

// KeyfileMatcher matches against the set of keys found in an
// authorized_keys-format file, reloaded from disk on demand.
type KeyfileMatcher struct {
	path string

	mu       sync.RWMutex
	matchers []*PubkeyMatcher
}

// NewKeyfileMatcher expands a leading "~" in path and performs an initial load.
func NewKeyfileMatcher(path string) (*KeyfileMatcher, error) {
	m := &KeyfileMatcher{path: expandTilde(path)}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *KeyfileMatcher) Path() string { return m.path }

// Reload re-reads the keyfile from disk, replacing the cached matcher set
// atomically. A key line that fails to parse is skipped with a warning
// rather than failing the whole reload, matching the tolerant posture an
// authorized_keys consumer needs against a file it does not own.
func (m *KeyfileMatcher) Reload() error {
	f, err := os.Open(m.path)
	if err != nil {
		return &matcherKindError{kind: "keyfile", pattern: m.path, cause: err}
	}
	defer f.Close()

	var matchers []*PubkeyMatcher
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keyPart := extractKeyPart(line)
		pm, err := NewPubkeyMatcher(keyPart)
		if err != nil {
			slog.Warn("skipping invalid key in keyfile", "path", m.path, "error", err)
			continue
		}
		matchers = append(matchers, pm)
	}
	if err := scanner.Err(); err != nil {
		return &matcherKindError{kind: "keyfile", pattern: m.path, cause: err}
	}

	m.mu.Lock()
	m.matchers = matchers
	m.mu.Unlock()
	return nil
}

func (m *KeyfileMatcher) Matches(id identity.Identity) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.matchers {
		if pm.Matches(id) {
			return true
		}
	}
	return false
}

func (m *KeyfileMatcher) Description() string {
	return "keyfile:" + m.path
}

func (*KeyfileMatcher) isMatcher() {}

// extractKeyPart returns the substring of line starting at the first
// recognized key-type token, stripping any options prefix. If no
// recognized token is found, the whole line is assumed to be the key.
func extractKeyPart(line string) string {
	best := -1
	for _, prefix := range recognizedKeyPrefixes {
		if idx := strings.Index(line, prefix); idx >= 0 && (best == -1 || idx < best) {
			best = idx
		}
	}
	if best == -1 {
		return line
	}
	return line[best:]
}

func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home + strings.TrimPrefix(path, "~")
	}
	return path
}
