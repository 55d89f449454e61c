// ABOUTME: Tests for capture sources
// ABOUTME: Tests tone generation, PCM conversion, FLAC interleaving and Open errors
package source

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/mewkiz/flac/frame"
)

type fixedReader struct {
	samples []int32
	closed  bool
}

func (r *fixedReader) readSamples(dst []int32) (int, error) {
	if len(r.samples) == 0 {
		return 0, io.EOF
	}
	n := copy(dst, r.samples)
	r.samples = r.samples[n:]
	return n, nil
}

func (r *fixedReader) close() error {
	r.closed = true
	return nil
}

func TestToneFormat(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		want  audio.Representation
		align int
	}{
		{"int16", Options{}, audio.Int16, 4},
		{"float", Options{Float: true}, audio.Float32, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewTone(48000, 2, tt.opts)
			f := src.Format()
			if f.Representation != tt.want || f.SampleRate != 48000 || f.Channels != 2 || f.Codec != "pcm" {
				t.Errorf("unexpected format %v", f)
			}
			if f.BlockAlign() != tt.align {
				t.Errorf("expected block align %d, got %d", tt.align, f.BlockAlign())
			}
		})
	}
}

func TestToneSamples(t *testing.T) {
	src := NewTone(48000, 2, Options{})
	buf := make([]byte, 480*4)

	n, err := src.Read(buf)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("expected %d bytes, got %d", len(buf), n)
	}

	peak := int16(0)
	for i := 0; i < n; i += 4 {
		left := int16(binary.LittleEndian.Uint16(buf[i:]))
		right := int16(binary.LittleEndian.Uint16(buf[i+2:]))
		if left != right {
			t.Fatalf("frame %d: channels differ (%d vs %d)", i/4, left, right)
		}
		if left > peak {
			peak = left
		}
	}

	// half volume sine
	if peak < 16000 || peak > 16384 {
		t.Errorf("expected peak near 16383, got %d", peak)
	}
	if first := int16(binary.LittleEndian.Uint16(buf[0:])); first != 0 {
		t.Errorf("expected sine to start at zero, got %d", first)
	}
}

func TestToneContinuesAcrossReads(t *testing.T) {
	whole := NewTone(48000, 1, Options{})
	a := make([]byte, 200)
	whole.Read(a)

	split := NewTone(48000, 1, Options{})
	b := make([]byte, 200)
	split.Read(b[:100])
	split.Read(b[100:])

	if string(a) != string(b) {
		t.Error("tone phase must continue across reads")
	}
}

func TestPCMSourceFloatConversion(t *testing.T) {
	r := &fixedReader{samples: []int32{0, audio.Max24Bit, audio.Min24Bit, audio.Max24Bit / 2}}
	src := newPCMSource(r, 48000, 1, Options{Float: true})

	buf := make([]byte, 16)
	n, err := src.Read(buf)
	if err != nil || n != 16 {
		t.Fatalf("Read() = %d, %v", n, err)
	}

	expected := []float32{0, 1, audio.SampleToFloat32(audio.Min24Bit), audio.SampleToFloat32(audio.Max24Bit / 2)}
	for i, want := range expected {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != want {
			t.Errorf("sample %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestPCMSourceWholeFrames(t *testing.T) {
	r := &fixedReader{samples: []int32{1 << 8, 2 << 8, 3 << 8}}
	src := newPCMSource(r, 48000, 2, Options{})

	// 10 bytes holds two stereo int16 frames
	buf := make([]byte, 10)
	n, err := src.Read(buf)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected one whole frame (4 bytes) from 3 samples, got %d", n)
	}

	if _, err := src.Read(make([]byte, 3)); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("expected io.ErrShortBuffer for sub-frame buffer, got %v", err)
	}

	if _, err := src.Read(buf); err != io.EOF {
		t.Errorf("expected io.EOF once drained, got %v", err)
	}

	src.Close()
	if !r.closed {
		t.Error("Close must close the sample reader")
	}
}

func TestInterleave(t *testing.T) {
	f := &frame.Frame{
		Header: frame.Header{BlockSize: 2},
		Subframes: []*frame.Subframe{
			{Samples: []int32{1, 2}},
			{Samples: []int32{-1, -2}},
		},
	}

	tests := []struct {
		name     string
		bitDepth int
		expected []int32
	}{
		{"16-bit scales up", 16, []int32{1 << 8, -1 << 8, 2 << 8, -2 << 8}},
		{"24-bit unchanged", 24, []int32{1, -1, 2, -2}},
		{"32-bit scales down", 32, []int32{0, -1, 0, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interleave(f, 2, tt.bitDepth)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
					break
				}
			}
		})
	}
}

func TestOpen(t *testing.T) {
	src, err := Open("", Options{})
	if err != nil {
		t.Fatalf("Open(\"\") failed: %v", err)
	}
	if src.Format().SampleRate != DefaultSampleRate || src.Format().Channels != DefaultChannels {
		t.Errorf("expected default tone format, got %v", src.Format())
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.mp3"), Options{}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}

	wav := filepath.Join(t.TempDir(), "clip.wav")
	os.WriteFile(wav, []byte("RIFF"), 0o644)
	if _, err := Open(wav, Options{}); err == nil || !strings.Contains(err.Error(), "unsupported audio format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestOpenCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.mp3", "bad.flac"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("not audio at all"), 0o644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
		if _, err := Open(path, Options{}); err == nil {
			t.Errorf("%s: expected decode error", name)
		}
	}
}
