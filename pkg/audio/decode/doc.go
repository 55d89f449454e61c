// ABOUTME: Audio decoder package for PCM and Opus input
// ABOUTME: Provides Decoder interface and implementations producing int32 samples
// Package decode converts audio bytes to samples.
//
// Supports: PCM (16-bit integer and 32-bit float, little-endian), Opus
//
// All decoders output interleaved int32 samples in 24-bit range so the
// resampler and the encoders share one sample representation.
//
// Example:
//
//	decoder, err := decode.NewPCM(audio.PCM16(48000, 2))
//	samples, err := decoder.Decode(pcmBytes)
package decode
