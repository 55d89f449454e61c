// ABOUTME: Audio sink package for consuming timed PCM from the bridge
// ABOUTME: Provides the Sink contract, a transcoding sink, packet writers and playback
// Package sink defines where bridged audio goes.
//
// A Sink accepts a format declaration per stream and then timed units of
// PCM. Two implementations are provided:
//   - Transcoder: buffers PCM per stream, cuts it into fixed-duration frames,
//     encodes each frame (Opus or PCM16) and hands packets to a PacketWriter
//   - Playback: plays one PCM16 stream on the default output device
//
// Packet writers deliver encoded frames to a length-prefixed file
// (FileWriter), a WebSocket receiver (WebSocketWriter) or a WebRTC track
// (TrackWriter). Receiver is the WebSocket endpoint on the far side of a
// WebSocketWriter, handing each session's packets to its own PacketWriter.
//
// Failures carry platform-style status codes through StatusError.
//
// Example:
//
//	w, _ := sink.CreateFile("out.pkt")
//	tc, _ := sink.NewTranscoder(sink.TranscoderConfig{Writer: w})
//	stream, _ := tc.AddStream(audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2})
//	b := bridge.New(tc, bridge.Config{StreamIndex: stream, SampleRate: 48000, Channels: 2})
package sink
