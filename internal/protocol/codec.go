package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest length prefix a frame may declare (16 MiB),
// matching the bound the upstream OpenSSH agent implementation enforces.
const MaxFrameSize = 16 * 1024 * 1024

var (
	// ErrZeroLengthFrame is returned when a frame declares a zero-byte body.
	ErrZeroLengthFrame = errors.New("protocol: zero-length frame")
	// ErrFrameTooLarge is returned when a frame's declared length exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum size")
	// ErrEmptyFrame is returned when decoding a frame body with no type byte.
	ErrEmptyFrame = errors.New("protocol: frame body has no type byte")
)

// ReadMessage reads one length-prefixed message from r.
//
// It returns (nil, nil) when the stream ends cleanly before any byte of the
// 4-byte length prefix is read — the normal signal for "client disconnected".
// Any other truncation (partway through the length prefix, or partway
// through the body) is reported as an error: io.ReadFull's own distinction
// between io.EOF (nothing read) and io.ErrUnexpectedEOF (partial read) gives
// us exactly that split for free.
func ReadMessage(r io.Reader) (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("protocol: reading frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 {
		return nil, ErrZeroLengthFrame
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("protocol: reading frame body: %w", err)
	}

	return decode(body)
}

// WriteMessage serializes msg as a length-prefixed frame and flushes it to w.
func WriteMessage(w io.Writer, msg *Message) error {
	total := 1 + len(msg.Payload)
	buf := make([]byte, 4+total)
	binary.BigEndian.PutUint32(buf[:4], uint32(total))
	buf[4] = byte(msg.Type)
	copy(buf[5:], msg.Payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("protocol: writing frame: %w", err)
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func decode(body []byte) (*Message, error) {
	if len(body) == 0 {
		return nil, ErrEmptyFrame
	}
	payload := make([]byte, len(body)-1)
	copy(payload, body[1:])
	return &Message{Type: MessageType(body[0]), Payload: payload}, nil
}
