// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Provides a raw Resampler and a format-negotiated Transform
// Package resample provides audio sample rate conversion.
//
// Resampler performs linear interpolation on interleaved int32 samples.
// Transform wraps it behind the lifecycle of a media transform: declare the
// input and output formats, send MessageBeginStreaming, Process units, then
// send MessageEndOfStream and Release.
//
// Example:
//
//	t, _ := resample.NewTransform()
//	t.SetInputFormat(audio.Format{Codec: "pcm", SampleRate: 44100, Channels: 2, Representation: audio.Float32})
//	t.SetOutputFormat(audio.PCM16(48000, 2))
//	t.ProcessMessage(resample.MessageBeginStreaming)
//	out, _ := t.NewUnit()
//	err := t.Process(in, out)
package resample
