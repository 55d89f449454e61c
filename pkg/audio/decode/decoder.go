// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for PCM and Opus decoders
package decode

import "github.com/Resonate-Protocol/pcmbridge/pkg/audio"

// Decoder turns PCM bytes or encoded packets into interleaved int32 samples
type Decoder interface {
	// Decode converts one buffer or packet to samples in 24-bit range
	Decode(data []byte) ([]int32, error)

	// Close releases decoder resources
	Close() error
}

// New returns the decoder for format.Codec
func New(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case "opus":
		return NewOpus(format)
	default:
		return NewPCM(format)
	}
}
