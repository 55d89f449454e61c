// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling between sample rates
package resample

import (
	"testing"
)

func TestNew(t *testing.T) {
	r := New(44100, 48000, 2)

	if r.inputRate != 44100 {
		t.Errorf("expected inputRate 44100, got %d", r.inputRate)
	}
	if r.outputRate != 48000 {
		t.Errorf("expected outputRate 48000, got %d", r.outputRate)
	}
	if r.channels != 2 {
		t.Errorf("expected channels 2, got %d", r.channels)
	}
}

func TestResampleExactValues(t *testing.T) {
	tests := []struct {
		name     string
		in, out  int
		chunks   [][]int32
		expected [][]int32
	}{
		{
			name:     "same rate holds last frame",
			in:       48000,
			out:      48000,
			chunks:   [][]int32{{1, 2, 3}, {4, 5}},
			expected: [][]int32{{1, 2}, {3, 4}},
		},
		{
			name:     "upsample 2x interpolates across chunks",
			in:       24000,
			out:      48000,
			chunks:   [][]int32{{0, 100}, {200}},
			expected: [][]int32{{0, 50}, {100, 150}},
		},
		{
			name:     "downsample 2x keeps phase",
			in:       48000,
			out:      24000,
			chunks:   [][]int32{{0, 10, 20, 30, 40}, {50, 60, 70}, {80, 90}},
			expected: [][]int32{{0, 20}, {40, 60}, {80}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.in, tt.out, 1)
			for i, chunk := range tt.chunks {
				need := r.OutputSamplesNeeded(len(chunk))
				if need != len(tt.expected[i]) {
					t.Errorf("chunk %d: OutputSamplesNeeded = %d, want %d", i, need, len(tt.expected[i]))
				}
				output := make([]int32, need+1)
				n := r.Resample(chunk, output)
				got := output[:n]
				if len(got) != len(tt.expected[i]) {
					t.Fatalf("chunk %d: expected %v, got %v", i, tt.expected[i], got)
				}
				for j := range got {
					if got[j] != tt.expected[i][j] {
						t.Errorf("chunk %d: expected %v, got %v", i, tt.expected[i], got)
						break
					}
				}
			}
		})
	}
}

func TestResampleUpsampling(t *testing.T) {
	r := New(44100, 48000, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100)
	}

	expectedSize := int(float64(len(input)) * float64(48000) / float64(44100))
	output := make([]int32, expectedSize+10)

	n := r.Resample(input, output)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleDownsampling(t *testing.T) {
	r := New(48000, 44100, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100)
	}

	expectedSize := int(float64(len(input)) * float64(44100) / float64(48000))
	output := make([]int32, expectedSize+10)

	n := r.Resample(input, output)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleStereoChannelsStaySeparate(t *testing.T) {
	r := New(24000, 48000, 2)

	// Left ramps up, right stays constant
	input := []int32{0, 500, 100, 500, 200, 500}
	output := make([]int32, r.OutputSamplesNeeded(len(input))+2)
	n := r.Resample(input, output)

	for i := 0; i < n; i += 2 {
		if output[i+1] != 500 {
			t.Errorf("frame %d: right channel leaked, got %d", i/2, output[i+1])
		}
	}
	if output[2] != 50 {
		t.Errorf("expected interpolated left sample 50, got %d", output[2])
	}
}

func TestResampleEmpty(t *testing.T) {
	r := New(44100, 48000, 2)
	if n := r.Resample(nil, make([]int32, 10)); n != 0 {
		t.Errorf("expected 0 samples, got %d", n)
	}
}

func TestReset(t *testing.T) {
	r := New(48000, 48000, 1)
	r.Resample([]int32{1, 2, 3}, make([]int32, 4))
	r.Reset()

	output := make([]int32, 4)
	n := r.Resample([]int32{7, 8}, output)
	if n != 1 || output[0] != 7 {
		t.Errorf("expected reset to drop held frame, got %v", output[:n])
	}
}
