package frame

import (
	"errors"
	"fmt"

	"github.com/relabs-tech/gesture_companion/internal/command"
)

// Wire layout of one frame: start marker, payload length, command code,
// two-byte big-endian sequence number, checksum over the payload bytes.
const (
	StartMarker byte = 0xA5

	payloadLen = 3

	// FrameLen is the size of one encoded frame on the wire.
	FrameLen = payloadLen + 3
)

var (
	ErrShortFrame  = errors.New("frame too short")
	ErrBadMarker   = errors.New("bad start marker")
	ErrBadLength   = errors.New("bad payload length")
	ErrBadChecksum = errors.New("bad checksum")
)

// checksum is the sum of the payload bytes modulo 256.
func checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// Marshal encodes one command as a wire frame.
func Marshal(c command.Command) []byte {
	buf := make([]byte, FrameLen)
	buf[0] = StartMarker
	buf[1] = payloadLen
	buf[2] = byte(c.Code)
	buf[3] = byte(c.Seq >> 8)
	buf[4] = byte(c.Seq)
	buf[5] = checksum(buf[2:5])
	return buf
}

// Unmarshal decodes one frame. The command code itself is not
// range-checked here so the receiver can log unknown codes.
func Unmarshal(buf []byte) (command.Command, error) {
	if len(buf) < FrameLen {
		return command.Command{}, ErrShortFrame
	}
	if buf[0] != StartMarker {
		return command.Command{}, ErrBadMarker
	}
	if buf[1] != payloadLen {
		return command.Command{}, fmt.Errorf("%w: %d", ErrBadLength, buf[1])
	}
	if buf[5] != checksum(buf[2:5]) {
		return command.Command{}, ErrBadChecksum
	}
	return command.Command{
		Code: command.Code(buf[2]),
		Seq:  uint16(buf[3])<<8 | uint16(buf[4]),
	}, nil
}
