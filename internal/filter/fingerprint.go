package filter

import (
	"fmt"
	"strings"

	"github.com/authsock/proxy/internal/identity"
)

// FingerprintMatcher matches an identity's SHA256 or MD5 fingerprint against
// a pattern. The pattern may be a full fingerprint or a prefix of one, which
// is convenient for matching against a fingerprint an operator has
// truncated when pasting it into config.
type FingerprintMatcher struct {
	pattern string
}

// NewFingerprintMatcher validates that pattern carries a recognized
// fingerprint prefix (SHA256: or MD5:) and builds a matcher for it.
func NewFingerprintMatcher(pattern string) (*FingerprintMatcher, error) {
	if !strings.HasPrefix(pattern, "SHA256:") && !strings.HasPrefix(pattern, "MD5:") {
		return nil, &matcherKindError{kind: "fingerprint", pattern: pattern,
			cause: fmt.Errorf("expected SHA256: or MD5: prefix")}
	}
	return &FingerprintMatcher{pattern: pattern}, nil
}

func (m *FingerprintMatcher) Pattern() string { return m.pattern }

func (m *FingerprintMatcher) Matches(id identity.Identity) bool {
	var fp string
	if strings.HasPrefix(m.pattern, "MD5:") {
		fp = id.MD5Fingerprint()
	} else {
		fp = id.Fingerprint()
	}
	if fp == "" {
		// Blob did not parse as a recognized key: no fingerprint, no match.
		return false
	}
	return fp == m.pattern || strings.HasPrefix(fp, m.pattern)
}

func (m *FingerprintMatcher) Description() string {
	return "fingerprint:" + m.pattern
}

func (*FingerprintMatcher) isMatcher() {}
