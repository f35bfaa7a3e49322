package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const testEd25519AuthorizedKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIBWtMzQuBVd5M+NnluGzv6yD3k3FUTSIX0H1/OQ5r3IK test@example.com"

func parseTestKey(t *testing.T) (blob []byte, comment string) {
	t.Helper()
	pk, _, _, _, err := ssh.ParseAuthorizedKey([]byte(testEd25519AuthorizedKey))
	require.NoError(t, err)
	return pk.Marshal(), "test@example.com"
}

func TestNew_ParsesRecognizedKey(t *testing.T) {
	blob, _ := parseTestKey(t)
	id := New(blob, "work laptop")

	pk, ok := id.Parsed()
	require.True(t, ok)
	assert.Equal(t, "ssh-ed25519", pk.Type())
	assert.Equal(t, "ssh-ed25519", id.KeyType())
}

func TestNew_UnparsableBlobStillUsable(t *testing.T) {
	id := New([]byte("not a real ssh key blob"), "mystery key")

	_, ok := id.Parsed()
	assert.False(t, ok)
	assert.Equal(t, "", id.KeyType())
	assert.Equal(t, "", id.Fingerprint())
	assert.Equal(t, "", id.MD5Fingerprint())
}

func TestFingerprint_StableAndPrefixed(t *testing.T) {
	blob, _ := parseTestKey(t)
	id := New(blob, "anything")

	fp := id.Fingerprint()
	assert.Contains(t, fp, "SHA256:")

	// Same blob, different comment, same fingerprint.
	other := New(blob, "something else entirely")
	assert.Equal(t, fp, other.Fingerprint())
}

func TestEqual_IgnoresComment(t *testing.T) {
	blob, _ := parseTestKey(t)
	a := New(blob, "comment a")
	b := New(blob, "comment b")
	assert.True(t, a.Equal(b))

	c := New([]byte("a totally different blob"), "comment a")
	assert.False(t, a.Equal(c))
}

func TestWithComment(t *testing.T) {
	blob, _ := parseTestKey(t)
	id := New(blob, "original")
	renamed := id.WithComment("")

	assert.Equal(t, "original", id.Comment)
	assert.Equal(t, "", renamed.Comment)
	assert.True(t, id.Equal(renamed))
}
