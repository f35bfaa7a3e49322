package filter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/authsock/proxy/internal/identity"
)

const (
	// githubKeysCacheTTL is how long a fetched key set is trusted before a
	// matcher re-fetches it.
	githubKeysCacheTTL = time.Hour
	// githubKeysFetchTimeout bounds a single fetch of a user's published keys.
	githubKeysFetchTimeout = 10 * time.Second
)

// GitHubKeysMatcher matches against the public keys a GitHub user has
// published at https://github.com/<user>.keys. The key set is fetched
// lazily and cached for cacheTTL.
type GitHubKeysMatcher struct {
	username string
	cacheTTL time.Duration
	client   *http.Client

	mu        sync.RWMutex
	matchers  []*PubkeyMatcher
	fetchedAt time.Time
}

// NewGitHubKeysMatcher builds a matcher for username with the default cache TTL.
func NewGitHubKeysMatcher(username string) *GitHubKeysMatcher {
	return NewGitHubKeysMatcherWithTTL(username, githubKeysCacheTTL)
}

// NewGitHubKeysMatcherWithTTL builds a matcher for username with a custom cache TTL.
func NewGitHubKeysMatcherWithTTL(username string, ttl time.Duration) *GitHubKeysMatcher {
	return &GitHubKeysMatcher{
		username: username,
		cacheTTL: ttl,
		client:   &http.Client{Timeout: githubKeysFetchTimeout},
	}
}

func (m *GitHubKeysMatcher) Username() string { return m.username }

// IsCacheValid reports whether the cached key set is still within its TTL.
func (m *GitHubKeysMatcher) IsCacheValid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.fetchedAt.IsZero() && time.Since(m.fetchedAt) < m.cacheTTL
}

// EnsureLoaded fetches the user's keys if the cache is stale or empty.
func (m *GitHubKeysMatcher) EnsureLoaded(ctx context.Context) error {
	if m.IsCacheValid() {
		return nil
	}
	return m.FetchKeys(ctx)
}

// Reload implements Reloadable: an unconditional re-fetch.
func (m *GitHubKeysMatcher) Reload() error {
	ctx, cancel := context.WithTimeout(context.Background(), githubKeysFetchTimeout)
	defer cancel()
	return m.FetchKeys(ctx)
}

// FetchKeys unconditionally fetches and caches the user's published keys.
func (m *GitHubKeysMatcher) FetchKeys(ctx context.Context) error {
	url := fmt.Sprintf("https://github.com/%s.keys", m.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &matcherKindError{kind: "github", pattern: m.username, cause: err}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return &matcherKindError{kind: "github", pattern: m.username, cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &matcherKindError{kind: "github", pattern: m.username,
			cause: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &matcherKindError{kind: "github", pattern: m.username, cause: err}
	}

	var matchers []*PubkeyMatcher
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pm, err := NewPubkeyMatcher(line)
		if err != nil {
			slog.Warn("skipping invalid key from GitHub user", "user", m.username, "error", err)
			continue
		}
		matchers = append(matchers, pm)
	}

	m.mu.Lock()
	m.matchers = matchers
	m.fetchedAt = time.Now()
	m.mu.Unlock()

	slog.Info("fetched keys for GitHub user", "user", m.username, "count", len(matchers))
	return nil
}

func (m *GitHubKeysMatcher) Matches(id identity.Identity) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, pm := range m.matchers {
		if pm.Matches(id) {
			return true
		}
	}
	return false
}

func (m *GitHubKeysMatcher) Description() string {
	return "github:" + m.username
}

func (*GitHubKeysMatcher) isMatcher() {}
