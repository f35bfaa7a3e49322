package agent

import (
	"sync"

	"github.com/authsock/proxy/internal/identity"
)

// AllowSet is the per-endpoint mutable set of key blobs that the endpoint
// most recently disclosed in a listing. It is shared across every
// concurrent session of one endpoint and is the primary gate for
// sign-requests. Blobs are compared by value, not by parsed structure — a
// blob is used as the map key directly (converted to string, which for
// Go's string/[]byte semantics is a value copy, never aliasing backing
// storage the caller might mutate).
type AllowSet struct {
	mu    sync.RWMutex
	blobs map[string]struct{}
}

// NewAllowSet returns an empty allow-set.
func NewAllowSet() *AllowSet {
	return &AllowSet{blobs: make(map[string]struct{})}
}

// Replace atomically swaps the allow-set's contents for the blobs of
// identities. Called once per identities-answer the mediator builds.
func (a *AllowSet) Replace(identities []identity.Identity) {
	next := make(map[string]struct{}, len(identities))
	for _, id := range identities {
		next[string(id.Blob)] = struct{}{}
	}
	a.mu.Lock()
	a.blobs = next
	a.mu.Unlock()
}

// Contains reports whether blob is in the current allow-set.
func (a *AllowSet) Contains(blob []byte) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.blobs[string(blob)]
	return ok
}

// Len reports the number of blobs currently in the allow-set.
func (a *AllowSet) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.blobs)
}
