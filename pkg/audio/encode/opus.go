// ABOUTME: Opus audio encoder
// ABOUTME: Encodes int32 samples to Opus packets
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// maxPacketSize is the recommended upper bound for one Opus packet
const maxPacketSize = 4000

// OpusEncoder encodes Opus audio
type OpusEncoder struct {
	encoder  *opus.Encoder
	channels int
	pcm      []int16
	buf      []byte
}

// NewOpus creates a new Opus encoder
func NewOpus(format audio.Format) (Encoder, error) {
	if format.Codec != "opus" {
		return nil, fmt.Errorf("invalid codec for Opus encoder: %s", format.Codec)
	}

	encoder, err := opus.NewEncoder(format.SampleRate, format.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	return &OpusEncoder{
		encoder:  encoder,
		channels: format.Channels,
		buf:      make([]byte, maxPacketSize),
	}, nil
}

// Encode converts one frame of int32 samples to an Opus packet
func (e *OpusEncoder) Encode(samples []int32) ([]byte, error) {
	if cap(e.pcm) < len(samples) {
		e.pcm = make([]int16, len(samples))
	}
	pcm := e.pcm[:len(samples)]
	for i, sample := range samples {
		pcm[i] = audio.SampleToInt16(sample)
	}

	n, err := e.encoder.Encode(pcm, e.buf)
	if err != nil {
		return nil, fmt.Errorf("opus encode error: %w", err)
	}

	packet := make([]byte, n)
	copy(packet, e.buf[:n])
	return packet, nil
}

// Close releases resources
func (e *OpusEncoder) Close() error {
	return nil
}
