// ABOUTME: Tests for the playback monitor sink
// ABOUTME: Tests stream validation and volume scaling without opening a device
package sink

import (
	"encoding/binary"
	"testing"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

func TestPlaybackRejectsWrongStream(t *testing.T) {
	p := NewPlayback(0)
	assertCode(t, p.SetInputFormat(1, audio.PCM16(48000, 2)), CodeInvalidStreamNumber)
	assertCode(t, p.WriteUnit(1, &audio.Unit{}), CodeInvalidStreamNumber)
}

func TestPlaybackRejectsFloat(t *testing.T) {
	p := NewPlayback(0)
	f := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, Representation: audio.Float32}
	assertCode(t, p.SetInputFormat(0, f), CodeInvalidMediaType)
}

func TestPlaybackNotAcceptingBeforeFormat(t *testing.T) {
	p := NewPlayback(0)
	assertCode(t, p.WriteUnit(0, &audio.Unit{Data: make([]byte, 4)}), CodeNotAccepting)
	if err := p.Close(); err != nil {
		t.Errorf("Close() on unopened playback failed: %v", err)
	}
}

func TestApplyVolume(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:], uint16(int16(1000)))
	binary.LittleEndian.PutUint16(data[2:], uint16(int16(-1000)))

	tests := []struct {
		name   string
		volume int
		muted  bool
		want   [2]int16
	}{
		{"full volume", 100, false, [2]int16{1000, -1000}},
		{"half volume", 50, false, [2]int16{500, -500}},
		{"muted", 100, true, [2]int16{0, 0}},
		{"zero volume", 0, false, [2]int16{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := applyVolume(data, tt.volume, tt.muted)
			for i, want := range tt.want {
				got := int16(binary.LittleEndian.Uint16(out[i*2:]))
				if got != want {
					t.Errorf("sample %d: expected %d, got %d", i, want, got)
				}
			}
		})
	}
}
