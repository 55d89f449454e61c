// ABOUTME: Tests for timed audio units
// ABOUTME: Tests tick arithmetic and unit construction
package audio

import (
	"testing"
	"time"
)

func TestDurationTicks(t *testing.T) {
	tests := []struct {
		name          string
		byteCount     int
		sampleRate    int
		bytesPerFrame int
		expected      Ticks
	}{
		{"100ms stereo int16 48k", 19200, 48000, 4, 1_000_000},
		{"1s stereo int16 48k", 192000, 48000, 4, 10_000_000},
		{"20ms mono int16 48k", 1920, 48000, 2, 200_000},
		{"10ms stereo float 48k", 3840, 48000, 8, 100_000},
		{"zero bytes", 0, 48000, 4, 0},
		{"one frame 44.1k truncates", 4, 44100, 4, 226}, // 226.757...
		{"partial frame", 3, 48000, 4, 156},             // 156.25
		{"zero rate", 100, 0, 4, 0},
		{"zero frame size", 100, 48000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DurationTicks(tt.byteCount, tt.sampleRate, tt.bytesPerFrame)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestDurationTicksLargeBuffer(t *testing.T) {
	// uint32-sized buffers must not overflow
	got := DurationTicks(4_000_000_000, 8000, 1)
	if got != 5_000_000_000_000 {
		t.Errorf("expected 5e12, got %d", got)
	}
}

func TestTicksConversions(t *testing.T) {
	if d := Ticks(1_000_000).Duration(); d != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", d)
	}
	if tk := TicksFromDuration(20 * time.Millisecond); tk != 200_000 {
		t.Errorf("expected 200000 ticks, got %d", tk)
	}
	if tk := TicksFromDuration(150 * time.Nanosecond); tk != 1 {
		t.Errorf("expected truncation to 1 tick, got %d", tk)
	}
}

func TestNewUnit(t *testing.T) {
	pcm := make([]byte, 19200)
	pcm[0] = 0x42

	u := NewUnit(pcm, 5_000, PCM16(48000, 2))

	if u.Timestamp != 5_000 {
		t.Errorf("expected timestamp 5000, got %d", u.Timestamp)
	}
	if u.Duration != 1_000_000 {
		t.Errorf("expected duration 1000000, got %d", u.Duration)
	}
	if u.End() != 1_005_000 {
		t.Errorf("expected end 1005000, got %d", u.End())
	}

	// Unit must own a copy
	pcm[0] = 0
	if u.Data[0] != 0x42 {
		t.Error("unit data aliases caller buffer")
	}
}

func TestUnitReset(t *testing.T) {
	u := &Unit{Data: make([]byte, 8, 16), Timestamp: 10, Duration: 20}
	u.Reset()

	if len(u.Data) != 0 || cap(u.Data) != 16 {
		t.Errorf("expected empty data with retained capacity, got len=%d cap=%d", len(u.Data), cap(u.Data))
	}
	if u.Timestamp != 0 || u.Duration != 0 {
		t.Error("expected timestamp and duration cleared")
	}
}
