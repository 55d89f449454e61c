// ABOUTME: Tests for audio types
// ABOUTME: Tests format derivations and sample conversion functions
package audio

import "testing"

func TestFormatDerived(t *testing.T) {
	tests := []struct {
		name           string
		format         Format
		bitDepth       int
		blockAlign     int
		avgBytesPerSec int
	}{
		{"int16 stereo 48k", Format{SampleRate: 48000, Channels: 2, Representation: Int16}, 16, 4, 192000},
		{"int16 mono 44.1k", Format{SampleRate: 44100, Channels: 1, Representation: Int16}, 16, 2, 88200},
		{"float stereo 48k", Format{SampleRate: 48000, Channels: 2, Representation: Float32}, 32, 8, 384000},
		{"float mono 16k", Format{SampleRate: 16000, Channels: 1, Representation: Float32}, 32, 4, 64000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.BitDepth(); got != tt.bitDepth {
				t.Errorf("expected bit depth %d, got %d", tt.bitDepth, got)
			}
			if got := tt.format.BlockAlign(); got != tt.blockAlign {
				t.Errorf("expected block align %d, got %d", tt.blockAlign, got)
			}
			if got := tt.format.AvgBytesPerSec(); got != tt.avgBytesPerSec {
				t.Errorf("expected avg bytes/sec %d, got %d", tt.avgBytesPerSec, got)
			}
		})
	}
}

func TestPCM16(t *testing.T) {
	f := PCM16(44100, 1)
	if f.Codec != "pcm" || f.SampleRate != 44100 || f.Channels != 1 || f.Representation != Int16 {
		t.Errorf("unexpected format: %+v", f)
	}
	if f.BitDepth() != 16 {
		t.Errorf("expected 16-bit, got %d", f.BitDepth())
	}
}

func TestFormatCompatible(t *testing.T) {
	base := Format{SampleRate: 48000, Channels: 2, Representation: Float32}

	if !base.Compatible(PCM16(48000, 2)) {
		t.Error("representation difference should not break compatibility")
	}
	if base.Compatible(PCM16(44100, 2)) {
		t.Error("sample rate mismatch should not be compatible")
	}
	if base.Compatible(PCM16(48000, 1)) {
		t.Error("channel mismatch should not be compatible")
	}
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"valid", PCM16(48000, 2), false},
		{"zero rate", PCM16(0, 2), true},
		{"negative rate", PCM16(-1, 2), true},
		{"zero channels", PCM16(48000, 0), true},
		{"bad representation", Format{SampleRate: 48000, Channels: 2, Representation: Representation(7)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected int32
	}{
		{"zero", 0, 0},
		{"positive", 100, 100 << 8},
		{"negative", -100, -100 << 8},
		{"max", 32767, 32767 << 8},
		{"min", -32768, -32768 << 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleFromFloat32(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"full scale", 1, 32767},
		{"negative full scale", -1, -32768},
		{"clipped high", 1.5, 32767},
		{"clipped low", -2, -32768},
		{"half", 0.5, 16383},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleToInt16(SampleFromFloat32(tt.input))
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestRoundTrip16Bit(t *testing.T) {
	samples := []int16{0, 100, -100, 1000, -1000, 32767, -32768}

	for _, original := range samples {
		sample32 := SampleFromInt16(original)
		result := SampleToInt16(sample32)
		if result != original {
			t.Errorf("round-trip failed: %d -> %d -> %d", original, sample32, result)
		}
	}
}
