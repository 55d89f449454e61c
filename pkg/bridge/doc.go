// ABOUTME: Audio bridge package forwarding capture PCM to a transcoding sink
// ABOUTME: Provides the Bridge type and a handle-based status-code interface
// Package bridge accepts raw PCM buffers from a capture pipeline and forwards
// them, timestamped in 100ns ticks, to one stream of a caller-owned sink.
//
// Construction negotiates formats in a fixed order: create the resampler,
// declare its input (int16 or float32 PCM) and output (int16 PCM), start
// streaming, allocate its scratch unit, then declare int16 PCM to the sink.
// Any failure leaves the bridge in StateFailed with a diagnostic naming the
// step. The resampler is configured but writes go straight to the sink.
//
// Each Write copies the buffer into a fresh unit whose duration is
//
//	floor(len(pcm) * 10^7 / (channels * bytesPerSample * sampleRate))
//
// and submits it under a per-bridge mutex.
//
// Example:
//
//	b := bridge.New(tc, bridge.Config{StreamIndex: 0, SampleRate: 48000, Channels: 2})
//	if !b.Ready() {
//	    log.Fatal(b.LastError())
//	}
//	defer b.Close()
//	err := b.Write(pcm, ts)
//
// The Create, WritePCM, Finalize, Destroy and GetError functions expose the
// same operations through opaque handles and integer status codes.
package bridge
