// ABOUTME: MP3 file source
// ABOUTME: Decodes MP3 with go-mp3, optionally looping at end of file
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

type mp3Reader struct {
	file    *os.File
	decoder *mp3.Decoder
	loop    bool
	buf     []byte
}

// NewMP3 opens an MP3 file. go-mp3 always decodes to 16-bit stereo.
func NewMP3(path string, opts Options) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", filepath.Base(path), decoder.SampleRate())

	r := &mp3Reader{file: f, decoder: decoder, loop: opts.Loop}
	return newPCMSource(r, decoder.SampleRate(), 2, opts), nil
}

func (r *mp3Reader) readSamples(dst []int32) (int, error) {
	need := len(dst) * 2
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}

	n, err := io.ReadFull(r.decoder, r.buf[:need])
	numSamples := n / 2
	for i := 0; i < numSamples; i++ {
		dst[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(r.buf[i*2:])))
	}

	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if !r.loop {
			if numSamples > 0 {
				return numSamples, nil
			}
			return 0, io.EOF
		}
		if err := r.rewind(); err != nil {
			return numSamples, err
		}
		return numSamples, nil
	}
	if err != nil {
		return numSamples, fmt.Errorf("mp3 decode error: %w", err)
	}
	return numSamples, nil
}

func (r *mp3Reader) rewind() error {
	if _, err := r.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	decoder, err := mp3.NewDecoder(r.file)
	if err != nil {
		return fmt.Errorf("failed to create new decoder: %w", err)
	}
	r.decoder = decoder
	return nil
}

func (r *mp3Reader) close() error {
	return r.file.Close()
}
