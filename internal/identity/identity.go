// Package identity models SSH public key identities as carried by the agent
// protocol: a canonical key blob, a comment, and a best-effort structured
// view of the key parsed via golang.org/x/crypto/ssh.
package identity

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Identity is one entry from an identities-answer: the canonical blob used
// for equality and matching, the comment string, and whatever structured
// view of the public key we could parse from the blob.
type Identity struct {
	Blob    []byte
	Comment string

	// parsed is nil when the blob did not parse as a recognized SSH public
	// key. A proxy must still be able to pass through and filter on such
	// identities by blob/comment alone; they have no fingerprint or key type.
	parsed ssh.PublicKey
}

// New builds an Identity from a raw blob and comment, parsing the blob on a
// best-effort basis. A parse failure is not an error: the Identity is still
// usable for blob-equality and comment-based matching, while Fingerprint,
// MD5Fingerprint and KeyType return "".
func New(blob []byte, comment string) Identity {
	id := Identity{Blob: blob, Comment: comment}
	if pk, err := ssh.ParsePublicKey(blob); err == nil {
		id.parsed = pk
	}
	return id
}

// Parsed reports the structured public key view and whether parsing succeeded.
func (id Identity) Parsed() (ssh.PublicKey, bool) {
	return id.parsed, id.parsed != nil
}

// KeyType returns the wire algorithm name (e.g. "ssh-ed25519",
// "ecdsa-sha2-nistp256") as reported by the parsed key, or "" if the blob
// did not parse. This is the raw wire name — normalization for matching
// purposes is the key-type matcher's job, not this package's.
func (id Identity) KeyType() string {
	if id.parsed == nil {
		return ""
	}
	return id.parsed.Type()
}

// Fingerprint computes the SHA-256 fingerprint of the key blob in the
// conventional "SHA256:<base64-no-padding>" form, or "" if the blob did not
// parse as a recognized key type. A fingerprint is only meaningful for a key
// the agent protocol actually recognizes; an absent fingerprint must not
// match any fingerprint rule.
func (id Identity) Fingerprint() string {
	if id.parsed == nil {
		return ""
	}
	sum := sha256.Sum256(id.Blob)
	return "SHA256:" + base64.RawStdEncoding.EncodeToString(sum[:])
}

// MD5Fingerprint computes the legacy "MD5:xx:xx:..." colon-separated
// fingerprint form, or "" if the blob did not parse. Modern agents and the
// fingerprint matcher default to SHA256, but older tooling and some
// operators still configure rules against MD5 fingerprints, so both are
// computed rather than just one — subject to the same absent-on-parse-
// failure rule as Fingerprint.
func (id Identity) MD5Fingerprint() string {
	if id.parsed == nil {
		return ""
	}
	sum := md5.Sum(id.Blob)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return "MD5:" + strings.Join(parts, ":")
}

// Equal reports whether two identities carry the same canonical key blob.
// Comment is explicitly excluded: the same key may be advertised under
// different comments by different calls, and blob equality is what the
// allow-set and sign-request matching are defined over.
func (id Identity) Equal(other Identity) bool {
	return bytes.Equal(id.Blob, other.Blob)
}

// WithComment returns a copy of id with the comment replaced; the blob and
// parsed view are kept.
func (id Identity) WithComment(comment string) Identity {
	id.Comment = comment
	return id
}
