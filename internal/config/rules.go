package config

import (
	"fmt"

	"github.com/authsock/proxy/internal/filter"
)

// RuleSet parses this endpoint's rule strings into a filter.RuleSet,
// wrapping any parse error with the endpoint's name for an actionable
// startup failure message.
func (e EndpointConfig) RuleSet() (filter.RuleSet, error) {
	rs, err := filter.ParseRuleSet(e.Rules)
	if err != nil {
		return filter.RuleSet{}, fmt.Errorf("config: endpoint %q: %w", e.Name, err)
	}
	return rs, nil
}
