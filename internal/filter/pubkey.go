package filter

import (
	"bytes"

	"github.com/authsock/proxy/internal/identity"
	"golang.org/x/crypto/ssh"
)

// PubkeyMatcher matches an identity by exact key blob equality, ignoring
// comment. The pattern is accepted in OpenSSH authorized_keys format
// ("ssh-ed25519 AAAA... [comment]"); any trailing comment is discarded.
type PubkeyMatcher struct {
	blob []byte
}

// NewPubkeyMatcher parses keyStr as an OpenSSH-format public key line.
func NewPubkeyMatcher(keyStr string) (*PubkeyMatcher, error) {
	pk, _, _, _, err := ssh.ParseAuthorizedKey([]byte(keyStr))
	if err != nil {
		return nil, &matcherKindError{kind: "pubkey", pattern: keyStr, cause: err}
	}
	return &PubkeyMatcher{blob: pk.Marshal()}, nil
}

// NewPubkeyMatcherFromBlob builds a matcher directly from a raw key blob,
// bypassing authorized_keys parsing. The blob is not validated.
func NewPubkeyMatcherFromBlob(blob []byte) *PubkeyMatcher {
	return &PubkeyMatcher{blob: blob}
}

func (m *PubkeyMatcher) Matches(id identity.Identity) bool {
	return bytes.Equal(id.Blob, m.blob)
}

func (m *PubkeyMatcher) Description() string {
	return "pubkey:<key>"
}

func (*PubkeyMatcher) isMatcher() {}
