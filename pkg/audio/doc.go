// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Unit and Ticks types and sample conversion functions
// Package audio provides the fundamental types shared by the bridge, its sinks and
// the resampling capability.
//
// This package defines:
//   - Format: a PCM or encoded stream descriptor (codec, sample rate, channels, representation)
//     with derived bit depth, block alignment and average byte rate
//   - Unit: a timed buffer of audio (bytes, presentation timestamp, duration)
//   - Ticks: 100-nanosecond fixed-point time used for timestamps and durations
//
// It also provides sample conversions between int16, float32 and the 24-bit int32 range
// used internally by the encoders and the resampler.
//
// Example:
//
//	format := audio.Format{
//	    Codec:          "pcm",
//	    SampleRate:     48000,
//	    Channels:       2,
//	    Representation: audio.Int16,
//	}
//
//	// 0.1s of stereo PCM16
//	d := audio.DurationTicks(19200, format.SampleRate, format.BlockAlign()) // 1_000_000
package audio
