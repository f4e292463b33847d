package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxFrameSize is the maximum allowed frame size (4MB). Schema metadata is
// small; anything larger is a malformed or hostile frame.
const MaxFrameSize = 4 * 1024 * 1024

// ErrFrameTooLarge is returned when a frame exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame size exceeds maximum allowed size")

// ReadFrame reads a length-prefixed frame from the reader.
// Format: [4 bytes length (BigEndian)] [N bytes payload]
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}

	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFrameTooLarge, length, MaxFrameSize)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}

	return buf, nil
}

// WriteFrame writes a length-prefixed frame to the writer.
// Format: [4 bytes length (BigEndian)] [N bytes payload]
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > math.MaxUint32 {
		return fmt.Errorf("%w: data length %d exceeds uint32 max", ErrFrameTooLarge, len(data))
	}

	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFrameTooLarge, len(data), MaxFrameSize)
	}

	length := uint32(len(data))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write frame length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame body: %w", err)
	}

	return nil
}
