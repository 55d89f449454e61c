// ABOUTME: Sink contract for timed PCM units and platform-style status errors
// ABOUTME: Defines Sink, StatusError, status codes, Packet and PacketWriter
package sink

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

// Status codes reported by sinks. Values match the media platform codes the
// bridge's callers already log and compare against.
const (
	CodeInvalidStreamNumber uint32 = 0xC00D36B3
	CodeInvalidMediaType    uint32 = 0xC00D36B4
	CodeNotAccepting        uint32 = 0xC00D36B5
	CodeCodecNotFound       uint32 = 0xC00D5212
)

// Sink consumes timed PCM units for one or more numbered streams
type Sink interface {
	// SetInputFormat declares the format of units that will be written to stream
	SetInputFormat(stream uint32, f audio.Format) error

	// WriteUnit submits one unit. Ownership of u passes to the sink.
	WriteUnit(stream uint32, u *audio.Unit) error
}

// StatusError is a sink failure carrying a numeric status code
type StatusError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: 0x%08X: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: 0x%08X", e.Op, e.Code)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Code extracts the status code from err, if it carries one
func Code(err error) (uint32, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// Packet is one encoded frame produced by a transcoding sink
type Packet struct {
	Stream    uint32
	Data      []byte
	Timestamp audio.Ticks
	Duration  audio.Ticks
}

// PacketWriter delivers encoded packets to a file, socket or track
type PacketWriter interface {
	WritePacket(p Packet) error
	Close() error
}
