package filter

import (
	"context"

	"github.com/authsock/proxy/internal/identity"
)

// RuleSet is a conjunction (AND) of rules. An empty rule set matches every
// identity — an endpoint configured with no rules is unrestricted, not
// locked out.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet wraps an already-built rule slice.
func NewRuleSet(rules []Rule) RuleSet {
	return RuleSet{rules: rules}
}

// ParseRuleSet parses each string in exprs as a rule via ParseRule.
func ParseRuleSet(exprs []string) (RuleSet, error) {
	rules := make([]Rule, 0, len(exprs))
	for _, expr := range exprs {
		r, err := ParseRule(expr)
		if err != nil {
			return RuleSet{}, err
		}
		rules = append(rules, r)
	}
	return RuleSet{rules: rules}, nil
}

// Matches reports whether id satisfies every rule in the set.
func (rs RuleSet) Matches(id identity.Identity) bool {
	for _, r := range rs.rules {
		if !r.Matches(id) {
			return false
		}
	}
	return true
}

// FilterIdentities returns the subset of identities that satisfy the set.
func (rs RuleSet) FilterIdentities(identities []identity.Identity) []identity.Identity {
	out := make([]identity.Identity, 0, len(identities))
	for _, id := range identities {
		if rs.Matches(id) {
			out = append(out, id)
		}
	}
	return out
}

// Len reports the number of rules in the set.
func (rs RuleSet) Len() int { return len(rs.rules) }

// IsEmpty reports whether the set has no rules (matches everything).
func (rs RuleSet) IsEmpty() bool { return len(rs.rules) == 0 }

// Rules exposes the underlying rules for inspection.
func (rs RuleSet) Rules() []Rule { return rs.rules }

// EnsureLoaded loads any matcher that needs externally-sourced state and
// has none cached yet: GitHub key sets are fetched only if their cache is
// stale, keyfiles are (re-)read unconditionally since a stat-based
// staleness check is not worth the complexity for a local file.
func (rs RuleSet) EnsureLoaded(ctx context.Context) error {
	for _, r := range rs.rules {
		switch m := r.Matcher.(type) {
		case *GitHubKeysMatcher:
			if err := m.EnsureLoaded(ctx); err != nil {
				return err
			}
		case *KeyfileMatcher:
			if err := m.Reload(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reload unconditionally refreshes every reloadable matcher in the set.
func (rs RuleSet) Reload(ctx context.Context) error {
	for _, r := range rs.rules {
		switch m := r.Matcher.(type) {
		case *GitHubKeysMatcher:
			if err := m.FetchKeys(ctx); err != nil {
				return err
			}
		case *KeyfileMatcher:
			if err := m.Reload(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Descriptions renders each rule's description, in order, for audit logging.
func (rs RuleSet) Descriptions() []string {
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Description()
	}
	return out
}
