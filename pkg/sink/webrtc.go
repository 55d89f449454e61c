// ABOUTME: Packet writer feeding encoded frames to a WebRTC sample track
// ABOUTME: Wraps pion's TrackLocalStaticSample for Opus audio
package sink

import (
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// SampleTrack is satisfied by *webrtc.TrackLocalStaticSample
type SampleTrack interface {
	WriteSample(s media.Sample) error
}

// TrackWriter writes each packet as one media sample
type TrackWriter struct {
	track SampleTrack
}

// NewTrackWriter creates a writer for track
func NewTrackWriter(track SampleTrack) *TrackWriter {
	return &TrackWriter{track: track}
}

// NewOpusTrack creates a 48kHz Opus sample track ready to add to a peer connection
func NewOpusTrack(id, streamID string, channels int) (*webrtc.TrackLocalStaticSample, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: 48000,
			Channels:  uint16(channels),
		},
		id,
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus track: %w", err)
	}
	return track, nil
}

// WritePacket writes p as a sample lasting p.Duration
func (w *TrackWriter) WritePacket(p Packet) error {
	if err := w.track.WriteSample(media.Sample{
		Data:     p.Data,
		Duration: p.Duration.Duration(),
	}); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	return nil
}

// Close is a no-op; the track belongs to its peer connection
func (w *TrackWriter) Close() error {
	return nil
}
