// ABOUTME: Audio encoder package for encoding samples to PCM16 or Opus
// ABOUTME: Provides Encoder interface and implementations for PCM, Opus
// Package encode provides audio encoders.
//
// Supports: PCM (16-bit integer, little-endian), Opus
//
// All encoders accept interleaved int32 samples in 24-bit range. The Opus
// encoder requires whole frames of a duration libopus accepts (2.5, 5, 10,
// 20, 40 or 60 ms).
//
// Example:
//
//	encoder, err := encode.NewOpus(audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2})
//	packet, err := encoder.Encode(frame)
package encode
