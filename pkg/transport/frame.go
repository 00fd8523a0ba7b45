package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frames larger than this are rejected rather than allocated.
const MaxFrame = 1 << 24

// readFrame reads a 4-byte big-endian length prefix followed by the payload.
func readFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("failed to read frame length: %w", err)
	}
	if length > MaxFrame {
		return nil, fmt.Errorf("frame of %d bytes exceeds %d", length, MaxFrame)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}
	return buf, nil
}

// writeFrame writes a 4-byte big-endian length prefix followed by the payload.
func writeFrame(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
