// ABOUTME: Capture sources feeding PCM bytes to the bridge
// ABOUTME: Converts decoded int32 samples to 16-bit integer or 32-bit float PCM
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
)

// Source produces interleaved little-endian PCM in Format()
type Source interface {
	// Read fills p with whole frames and returns the byte count
	Read(p []byte) (int, error)
	Format() audio.Format
	Close() error
}

// Options controls the PCM a source emits
type Options struct {
	Float bool // emit 32-bit float instead of 16-bit integer
	Loop  bool // restart files at end of stream instead of returning io.EOF
}

// sampleReader yields samples in 24-bit range
type sampleReader interface {
	readSamples(dst []int32) (int, error)
	close() error
}

// pcmSource adapts a sampleReader to the byte-oriented Source
type pcmSource struct {
	format  audio.Format
	samples sampleReader
	buf     []int32
}

func newPCMSource(r sampleReader, sampleRate, channels int, opts Options) *pcmSource {
	rep := audio.Int16
	if opts.Float {
		rep = audio.Float32
	}
	return &pcmSource{
		format: audio.Format{
			Codec:          "pcm",
			SampleRate:     sampleRate,
			Channels:       channels,
			Representation: rep,
		},
		samples: r,
	}
}

func (s *pcmSource) Format() audio.Format { return s.format }

func (s *pcmSource) Read(p []byte) (int, error) {
	frames := len(p) / s.format.BlockAlign()
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	want := frames * s.format.Channels
	if cap(s.buf) < want {
		s.buf = make([]int32, want)
	}
	n, err := s.samples.readSamples(s.buf[:want])
	n -= n % s.format.Channels

	bps := s.format.BytesPerSample()
	for i, sample := range s.buf[:n] {
		if s.format.Representation == audio.Float32 {
			binary.LittleEndian.PutUint32(p[i*bps:], math.Float32bits(audio.SampleToFloat32(sample)))
		} else {
			binary.LittleEndian.PutUint16(p[i*bps:], uint16(audio.SampleToInt16(sample)))
		}
	}
	return n * bps, err
}

func (s *pcmSource) Close() error {
	return s.samples.close()
}

// Open returns a source for path. An empty path yields a 48kHz stereo test tone.
func Open(path string, opts Options) (Source, error) {
	if path == "" {
		return NewTone(DefaultSampleRate, DefaultChannels, opts), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		return NewMP3(path, opts)
	case ".flac":
		return NewFLAC(path, opts)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac)", ext)
	}
}
