// ABOUTME: Audio type definitions
// ABOUTME: Defines format descriptors, sample representations and sample conversions
package audio

import "fmt"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Representation is the in-memory layout of one PCM sample
type Representation int

const (
	// Int16 is signed 16-bit little-endian integer PCM
	Int16 Representation = iota
	// Float32 is IEEE-754 32-bit little-endian float PCM in [-1, 1]
	Float32
)

func (r Representation) String() string {
	switch r {
	case Int16:
		return "int16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Representation(%d)", int(r))
	}
}

// Format describes a PCM or encoded audio stream
type Format struct {
	Codec          string
	SampleRate     int
	Channels       int
	Representation Representation
}

// PCM16 returns the 16-bit integer PCM format every sink receives
func PCM16(sampleRate, channels int) Format {
	return Format{
		Codec:          "pcm",
		SampleRate:     sampleRate,
		Channels:       channels,
		Representation: Int16,
	}
}

// BitDepth returns bits per sample: 32 for float, 16 otherwise
func (f Format) BitDepth() int {
	if f.Representation == Float32 {
		return 32
	}
	return 16
}

// BytesPerSample returns the size of a single-channel sample
func (f Format) BytesPerSample() int {
	return f.BitDepth() / 8
}

// BlockAlign returns the size of one frame (all channels)
func (f Format) BlockAlign() int {
	return f.Channels * f.BytesPerSample()
}

// AvgBytesPerSec returns the PCM data rate
func (f Format) AvgBytesPerSec() int {
	return f.SampleRate * f.BlockAlign()
}

// Compatible reports whether two formats agree on sample rate and channel count.
// Representation and codec may differ.
func (f Format) Compatible(other Format) bool {
	return f.SampleRate == other.SampleRate && f.Channels == other.Channels
}

// Validate checks that the descriptor is usable
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	if f.Representation != Int16 && f.Representation != Float32 {
		return fmt.Errorf("unsupported representation: %v", f.Representation)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %v", f.Codec, f.SampleRate, f.Channels, f.Representation)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit output)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit range to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleFromFloat32 converts a float sample in [-1, 1] to the 24-bit range, clipping outside it
func SampleFromFloat32(sample float32) int32 {
	if sample >= 1 {
		return Max24Bit
	}
	if sample <= -1 {
		return Min24Bit
	}
	return int32(sample * Max24Bit)
}

// SampleToFloat32 converts a 24-bit range sample to float in [-1, 1]
func SampleToFloat32(sample int32) float32 {
	return float32(sample) / Max24Bit
}
