// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for PCM and Opus encoders
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

// Encoder encodes PCM int32 samples to wire bytes
type Encoder interface {
	// Encode converts one frame of interleaved samples to encoded audio data
	Encode(samples []int32) ([]byte, error)

	// Close releases encoder resources
	Close() error
}

// New returns the encoder for format.Codec
func New(format audio.Format) (Encoder, error) {
	switch format.Codec {
	case "opus":
		return NewOpus(format)
	case "pcm":
		return NewPCM(format)
	default:
		return nil, fmt.Errorf("unsupported codec: %s", format.Codec)
	}
}
