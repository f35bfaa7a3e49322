// Package filter implements the endpoint rule set: a tagged union of
// matcher kinds, negatable rules, and an AND-conjunction evaluator that
// decides which identities an endpoint is allowed to see and sign with.
package filter

import (
	"fmt"

	"github.com/authsock/proxy/internal/identity"
)

// Matcher is a single filter kind capable of testing an identity. The
// unexported marker method closes the set to the matchers implemented in
// this package, mirroring a tagged-union enum.
type Matcher interface {
	Matches(id identity.Identity) bool
	Description() string
	isMatcher()
}

// Reloadable is implemented by matchers that hold externally-sourced state
// (a keyfile on disk, a GitHub user's published keys) that can go stale and
// needs periodic or on-demand refresh.
type Reloadable interface {
	Reload() error
}

// matcherKindError reports a matcher construction failure, wrapping the
// underlying cause with the pattern that triggered it.
type matcherKindError struct {
	kind    string
	pattern string
	cause   error
}

func (e *matcherKindError) Error() string {
	return fmt.Sprintf("filter: invalid %s pattern %q: %v", e.kind, e.pattern, e.cause)
}

func (e *matcherKindError) Unwrap() error { return e.cause }
