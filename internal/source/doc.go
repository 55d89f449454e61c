// ABOUTME: Capture source package for the pcmbridge command
// ABOUTME: Supplies test tone, MP3 and FLAC audio as raw PCM bytes
// Package source produces raw PCM for the bridge to forward.
//
// Sources emit interleaved little-endian frames as either 16-bit integers or
// 32-bit floats, selected with Options.Float, so both bridge input modes
// can be exercised from the same audio.
package source
