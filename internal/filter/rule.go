package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/authsock/proxy/internal/identity"
)

// ErrUnknownFilterFormat is returned when a rule string matches neither an
// explicit "kind:value" prefix nor any auto-detection heuristic.
var ErrUnknownFilterFormat = errors.New("filter: unknown filter format")

// Rule pairs a Matcher with an optional negation flag.
type Rule struct {
	Matcher Matcher
	Negated bool
}

// Matches applies the rule's matcher and, if negated, inverts the result.
func (r Rule) Matches(id identity.Identity) bool {
	result := r.Matcher.Matches(id)
	if r.Negated {
		return !result
	}
	return result
}

// Description renders the rule for logging, with a leading "-" if negated.
func (r Rule) Description() string {
	if r.Negated {
		return "-" + r.Matcher.Description()
	}
	return r.Matcher.Description()
}

// ParseRule parses a single rule string. Grammar:
//
//	-<rule>                 negation prefix
//	SHA256:... / MD5:...    auto-detected fingerprint
//	ssh-... / ecdsa-...     auto-detected public key
//	fingerprint:<pattern>
//	pubkey:<key>
//	keyfile:<path>
//	comment:<pattern>
//	type:<key-type>
//	github:<username>
func ParseRule(s string) (Rule, error) {
	negated := false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		negated = true
		s = rest
	}

	m, err := parseMatcher(s)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Matcher: m, Negated: negated}, nil
}

func parseMatcher(s string) (Matcher, error) {
	if m := tryAutoDetect(s); m != nil {
		return m, nil
	}

	switch {
	case strings.HasPrefix(s, "fingerprint:"):
		return NewFingerprintMatcher(strings.TrimPrefix(s, "fingerprint:"))
	case strings.HasPrefix(s, "pubkey:"):
		return NewPubkeyMatcher(strings.TrimPrefix(s, "pubkey:"))
	case strings.HasPrefix(s, "keyfile:"):
		return NewKeyfileMatcher(strings.TrimPrefix(s, "keyfile:"))
	case strings.HasPrefix(s, "comment:"):
		return NewCommentMatcher(strings.TrimPrefix(s, "comment:"))
	case strings.HasPrefix(s, "type:"):
		return NewKeyTypeMatcher(strings.TrimPrefix(s, "type:")), nil
	case strings.HasPrefix(s, "github:"):
		return NewGitHubKeysMatcher(strings.TrimPrefix(s, "github:")), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownFilterFormat, s)
}

func tryAutoDetect(s string) Matcher {
	if strings.HasPrefix(s, "SHA256:") || strings.HasPrefix(s, "MD5:") {
		if m, err := NewFingerprintMatcher(s); err == nil {
			return m
		}
		return nil
	}

	if strings.HasPrefix(s, "ssh-") || strings.HasPrefix(s, "ecdsa-sha2-") ||
		strings.HasPrefix(s, "sk-ssh-") || strings.HasPrefix(s, "sk-ecdsa-") {
		if m, err := NewPubkeyMatcher(s); err == nil {
			return m
		}
		return nil
	}

	return nil
}
