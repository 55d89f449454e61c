// ABOUTME: Test tone generator source
// ABOUTME: Generates a 440Hz sine wave at half volume on every channel
package source

import (
	"math"
	"sync"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

const (
	DefaultSampleRate = 48000
	DefaultChannels   = 2
	toneFrequency     = 440.0 // A4
)

type tone struct {
	mu          sync.Mutex
	sampleRate  int
	channels    int
	sampleIndex uint64
}

// NewTone creates an endless 440Hz test tone
func NewTone(sampleRate, channels int, opts Options) Source {
	return newPCMSource(&tone{sampleRate: sampleRate, channels: channels}, sampleRate, channels, opts)
}

func (t *tone) readSamples(dst []int32) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	frames := len(dst) / t.channels
	for i := 0; i < frames; i++ {
		pos := float64(t.sampleIndex+uint64(i)) / float64(t.sampleRate)
		value := math.Sin(2*math.Pi*toneFrequency*pos) * 0.5

		sample := int32(value * audio.Max24Bit)
		for ch := 0; ch < t.channels; ch++ {
			dst[i*t.channels+ch] = sample
		}
	}
	t.sampleIndex += uint64(frames)
	return frames * t.channels, nil
}

func (t *tone) close() error { return nil }
