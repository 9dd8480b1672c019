package socket

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// First frame bytes: FIN set plus the opcode.
const (
	frameText   byte = 0x81
	frameBinary byte = 0x82
	frameClose  byte = 0x88
)

// Second frame byte: mask bit plus a 7-bit length, or a marker for a longer length.
const (
	maskBit byte = 0x80
	len16   byte = 126
	len64   byte = 127
)

const (
	maxShort  = 125
	maxMedium = 0xFFFF
)

var ErrFrameTooLarge = errors.New("frame exceeds the payload limit")

// readFrame reads one frame and unmasks its payload. Payloads above limit are refused.
func readFrame(r io.Reader, limit int) (byte, []byte, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, nil, err
	}

	n := uint64(head[1] &^ maskBit)
	switch n {
	case uint64(len16):
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return 0, nil, err
		}
		n = uint64(binary.BigEndian.Uint16(ext[:]))
	case uint64(len64):
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return 0, nil, err
		}
		n = binary.BigEndian.Uint64(ext[:])
	}
	if n > uint64(limit) {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}

	var mask [4]byte
	masked := head[1]&maskBit != 0
	if masked {
		if _, err := io.ReadFull(r, mask[:]); err != nil {
			return 0, nil, err
		}
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	if masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}
	return head[0], payload, nil
}

// appendFrame encodes an unmasked server frame.
func appendFrame(b []byte, first byte, payload []byte) []byte {
	n := len(payload)
	b = append(b, first)
	switch {
	case n <= maxShort:
		b = append(b, byte(n))
	case n <= maxMedium:
		b = append(b, len16)
		b = binary.BigEndian.AppendUint16(b, uint16(n))
	default:
		b = append(b, len64)
		b = binary.BigEndian.AppendUint64(b, uint64(n))
	}
	return append(b, payload...)
}
