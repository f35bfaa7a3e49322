package filter

import (
	"strings"

	"github.com/authsock/proxy/internal/identity"
)

// KeyTypeMatcher matches an identity by its normalized key type, accepting
// both short forms ("ed25519", "rsa", "ecdsa", "dsa") and full wire
// algorithm names ("ssh-ed25519", "ecdsa-sha2-nistp256", ...) on both sides
// of the comparison.
type KeyTypeMatcher struct {
	keyType string
}

// NewKeyTypeMatcher normalizes keyType at construction time.
func NewKeyTypeMatcher(keyType string) *KeyTypeMatcher {
	return &KeyTypeMatcher{keyType: normalizeKeyType(keyType)}
}

func (m *KeyTypeMatcher) KeyType() string { return m.keyType }

func (m *KeyTypeMatcher) Matches(id identity.Identity) bool {
	algo := id.KeyType()
	if algo == "" {
		return false
	}
	return normalizeKeyType(algo) == m.keyType
}

func (m *KeyTypeMatcher) Description() string {
	return "type:" + m.keyType
}

func (*KeyTypeMatcher) isMatcher() {}

func normalizeKeyType(keyType string) string {
	lower := strings.ToLower(keyType)
	switch {
	case lower == "ssh-ed25519" || lower == "ed25519":
		return "ed25519"
	case lower == "ssh-rsa" || lower == "rsa":
		return "rsa"
	case lower == "ssh-dss" || lower == "dsa" || lower == "dss":
		return "dsa"
	case strings.HasPrefix(lower, "ecdsa-sha2-") || lower == "ecdsa":
		return "ecdsa"
	case strings.HasPrefix(lower, "sk-ssh-ed25519") || lower == "sk-ed25519":
		return "sk-ed25519"
	case strings.HasPrefix(lower, "sk-ecdsa-sha2-") || lower == "sk-ecdsa":
		return "sk-ecdsa"
	default:
		return lower
	}
}
