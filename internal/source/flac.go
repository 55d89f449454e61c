// ABOUTME: FLAC file source
// ABOUTME: Decodes FLAC frames with mewkiz/flac and scales samples to 24-bit range
package source

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

type flacReader struct {
	file     *os.File
	stream   *flac.Stream
	channels int
	bitDepth int
	loop     bool
	pending  []int32
}

// NewFLAC opens a FLAC file
func NewFLAC(path string, opts Options) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		filepath.Base(path), info.SampleRate, info.NChannels, info.BitsPerSample)

	r := &flacReader{
		file:     f,
		stream:   stream,
		channels: int(info.NChannels),
		bitDepth: int(info.BitsPerSample),
		loop:     opts.Loop,
	}
	return newPCMSource(r, int(info.SampleRate), r.channels, opts), nil
}

func (r *flacReader) readSamples(dst []int32) (int, error) {
	read := copy(dst, r.pending)
	r.pending = r.pending[read:]

	for read < len(dst) {
		f, err := r.stream.ParseNext()
		if err == io.EOF {
			if !r.loop {
				if read > 0 {
					return read, nil
				}
				return 0, io.EOF
			}
			if err := r.rewind(); err != nil {
				return read, err
			}
			continue
		}
		if err != nil {
			return read, fmt.Errorf("flac decode error: %w", err)
		}

		samples := interleave(f, r.channels, r.bitDepth)
		n := copy(dst[read:], samples)
		read += n
		r.pending = append(r.pending[:0], samples[n:]...)
	}
	return read, nil
}

// interleave flattens a frame's subframes and scales them to 24-bit range
func interleave(f *frame.Frame, channels, bitDepth int) []int32 {
	blockSize := int(f.BlockSize)
	out := make([]int32, blockSize*channels)
	shift := 24 - bitDepth

	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			sample := f.Subframes[ch].Samples[i]
			if shift >= 0 {
				sample <<= shift
			} else {
				sample >>= -shift
			}
			out[i*channels+ch] = sample
		}
	}
	return out
}

func (r *flacReader) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	stream, err := flac.New(r.file)
	if err != nil {
		return fmt.Errorf("failed to create new stream: %w", err)
	}
	r.stream = stream
	return nil
}

func (r *flacReader) close() error {
	return r.file.Close()
}
