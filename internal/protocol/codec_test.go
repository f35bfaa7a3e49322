package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessage_RoundTrip(t *testing.T) {
	msg := NewMessage(MessageRequestIdentities, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg))

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msg.Type, got.Type)
	assert.Empty(t, got.Payload)
}

func TestReadMessage_RoundTripWithPayload(t *testing.T) {
	msg := NewMessage(MessageSignRequest, []byte{0, 0, 0, 3, 'a', 'b', 'c'})

	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg))

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, msg.Type, got.Type)
	assert.Equal(t, msg.Payload, got.Payload)
}

func TestReadMessage_CleanEOFBeforeLength(t *testing.T) {
	got, err := ReadMessage(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadMessage_PartialLengthIsError(t *testing.T) {
	_, err := ReadMessage(bytes.NewReader([]byte{0, 0}))
	assert.Error(t, err)
}

func TestReadMessage_TruncatedBodyIsError(t *testing.T) {
	// Declares 10 bytes but only 5 are present.
	data := []byte{0, 0, 0, 10, 1, 2, 3, 4, 5}
	_, err := ReadMessage(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestReadMessage_ZeroLengthIsError(t *testing.T) {
	_, err := ReadMessage(bytes.NewReader([]byte{0, 0, 0, 0}))
	assert.ErrorIs(t, err, ErrZeroLengthFrame)
}

func TestReadMessage_OversizeLengthIsError(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	_, err := ReadMessage(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadMessage_ValidRequestIdentities(t *testing.T) {
	data := []byte{0, 0, 0, 1, 11}
	msg, err := ReadMessage(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, MessageRequestIdentities, msg.Type)
}
