// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 16-bit integer and 32-bit float PCM to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

// PCMDecoder decodes little-endian PCM audio
type PCMDecoder struct {
	representation audio.Representation
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (Decoder, error) {
	if format.Codec != "pcm" {
		return nil, fmt.Errorf("invalid codec for PCM decoder: %s", format.Codec)
	}

	switch format.Representation {
	case audio.Int16, audio.Float32:
	default:
		return nil, fmt.Errorf("unsupported representation: %v", format.Representation)
	}

	return &PCMDecoder{
		representation: format.Representation,
	}, nil
}

// Decode converts PCM bytes to int32 samples. Trailing bytes that do not
// form a whole sample are ignored.
func (d *PCMDecoder) Decode(data []byte) ([]int32, error) {
	if d.representation == audio.Float32 {
		numSamples := len(data) / 4
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			f := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
			samples[i] = audio.SampleFromFloat32(f)
		}
		return samples, nil
	}

	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples, nil
}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
