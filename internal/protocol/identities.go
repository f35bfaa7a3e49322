package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxIdentities bounds the identity count an identities-answer payload may
// declare, preventing a malicious or buggy upstream from forcing an
// unbounded allocation.
const MaxIdentities = 10_000

// MaxBlobSize bounds the length of any single key blob or comment inside an
// identities-answer or sign-request payload.
const MaxBlobSize = 16 * 1024 * 1024

var (
	ErrMalformedPayload  = errors.New("protocol: malformed payload")
	ErrTooManyIdentities = errors.New("protocol: identity count exceeds maximum")
	ErrBlobTooLarge      = errors.New("protocol: length-prefixed field exceeds maximum size")
)

// RawIdentity is an (key blob, comment) pair as carried on the wire, before
// any parsing of the key blob into a structured public key.
type RawIdentity struct {
	Blob    []byte
	Comment string
}

// ParseIdentitiesAnswer decodes an SSH_AGENT_IDENTITIES_ANSWER payload:
// uint32 count followed by count × (length-prefixed blob, length-prefixed
// comment).
func ParseIdentitiesAnswer(msg *Message) ([]RawIdentity, error) {
	if msg.Type != MessageIdentitiesAnswer {
		return nil, fmt.Errorf("%w: expected identities-answer, got %s", ErrMalformedPayload, msg.Type)
	}

	buf := msg.Payload
	count, buf, err := readUint32(buf)
	if err != nil {
		return nil, err
	}
	if count > MaxIdentities {
		return nil, fmt.Errorf("%w: %d", ErrTooManyIdentities, count)
	}

	identities := make([]RawIdentity, 0, count)
	for i := uint32(0); i < count; i++ {
		var blob, commentBytes []byte
		blob, buf, err = readLengthPrefixed(buf)
		if err != nil {
			return nil, err
		}
		commentBytes, buf, err = readLengthPrefixed(buf)
		if err != nil {
			return nil, err
		}
		identities = append(identities, RawIdentity{Blob: blob, Comment: string(commentBytes)})
	}

	return identities, nil
}

// BuildIdentitiesAnswer serializes identities into a fresh
// SSH_AGENT_IDENTITIES_ANSWER message, in the given order.
func BuildIdentitiesAnswer(identities []RawIdentity) *Message {
	size := 4
	for _, id := range identities {
		size += 4 + len(id.Blob) + 4 + len(id.Comment)
	}

	payload := make([]byte, size)
	binary.BigEndian.PutUint32(payload[:4], uint32(len(identities)))
	offset := 4
	for _, id := range identities {
		binary.BigEndian.PutUint32(payload[offset:], uint32(len(id.Blob)))
		offset += 4
		offset += copy(payload[offset:], id.Blob)
		binary.BigEndian.PutUint32(payload[offset:], uint32(len(id.Comment)))
		offset += 4
		offset += copy(payload[offset:], id.Comment)
	}

	return &Message{Type: MessageIdentitiesAnswer, Payload: payload}
}

// ParseSignRequestKey reads the leading length-prefixed key blob from an
// SSH_AGENTC_SIGN_REQUEST payload. The remainder of the payload (signature
// flags, data to sign) is opaque and is never inspected here — it is
// forwarded to upstream verbatim by the caller.
func ParseSignRequestKey(msg *Message) ([]byte, error) {
	if msg.Type != MessageSignRequest {
		return nil, fmt.Errorf("%w: expected sign-request, got %s", ErrMalformedPayload, msg.Type)
	}
	blob, _, err := readLengthPrefixed(msg.Payload)
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func readUint32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, fmt.Errorf("%w: truncated before length", ErrMalformedPayload)
	}
	return binary.BigEndian.Uint32(buf[:4]), buf[4:], nil
}

func readLengthPrefixed(buf []byte) ([]byte, []byte, error) {
	length, rest, err := readUint32(buf)
	if err != nil {
		return nil, nil, err
	}
	if length > MaxBlobSize {
		return nil, nil, fmt.Errorf("%w: %d", ErrBlobTooLarge, length)
	}
	if uint32(len(rest)) < length {
		return nil, nil, fmt.Errorf("%w: truncated field", ErrMalformedPayload)
	}
	field := make([]byte, length)
	copy(field, rest[:length])
	return field, rest[length:], nil
}
