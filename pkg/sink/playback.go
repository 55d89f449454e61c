// ABOUTME: Oto-based monitor sink playing one PCM16 stream on the default device
// ABOUTME: Handles PCM playback with software volume control using oto library
package sink

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Playback is a Sink that plays a single stream through oto
type Playback struct {
	stream     uint32
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	format     *audio.Format
	volume     int
	muted      bool
}

// NewPlayback creates a playback sink accepting only the given stream index
func NewPlayback(stream uint32) *Playback {
	return &Playback{
		stream: stream,
		volume: 100,
	}
}

// SetInputFormat opens the output device for f. oto allows one context per
// process, so a later declaration must repeat the same format.
func (p *Playback) SetInputFormat(stream uint32, f audio.Format) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stream != p.stream {
		return &StatusError{Op: "set input format", Code: CodeInvalidStreamNumber}
	}
	if f.Codec != "pcm" || f.Representation != audio.Int16 {
		return &StatusError{Op: "set input format", Code: CodeInvalidMediaType,
			Err: fmt.Errorf("playback requires 16-bit pcm, got %s", f)}
	}

	if p.otoCtx != nil {
		if p.format.SampleRate == f.SampleRate && p.format.Channels == f.Channels {
			log.Printf("Audio output already initialized with same format, reusing context")
			return nil
		}
		return &StatusError{Op: "set input format", Code: CodeInvalidMediaType,
			Err: fmt.Errorf("format change %s -> %s not supported by oto", p.format, f)}
	}

	op := &oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	p.otoCtx = ctx
	p.format = &f

	// Persistent player fed through a pipe
	p.pipeReader, p.pipeWriter = io.Pipe()
	p.player = p.otoCtx.NewPlayer(p.pipeReader)
	p.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels", f.SampleRate, f.Channels)
	return nil
}

// WriteUnit plays the unit's PCM (blocks until the player accepts it)
func (p *Playback) WriteUnit(stream uint32, u *audio.Unit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stream != p.stream {
		return &StatusError{Op: "write unit", Code: CodeInvalidStreamNumber}
	}
	if p.pipeWriter == nil {
		return &StatusError{Op: "write unit", Code: CodeNotAccepting}
	}

	data := applyVolume(u.Data, p.volume, p.muted)
	if _, err := p.pipeWriter.Write(data); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}
	return nil
}

// Close stops playback and releases the device
func (p *Playback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pipeWriter != nil {
		p.pipeWriter.Close()
		p.pipeWriter = nil
	}
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
	if p.pipeReader != nil {
		p.pipeReader.Close()
		p.pipeReader = nil
	}
	if p.otoCtx != nil {
		p.otoCtx.Suspend()
	}
	return nil
}

// SetVolume sets the volume (0-100)
func (p *Playback) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (p *Playback) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// applyVolume scales little-endian int16 PCM, returning data untouched at full volume
func applyVolume(data []byte, volume int, muted bool) []byte {
	if !muted && volume >= 100 {
		return data
	}

	multiplier := 0.0
	if !muted {
		multiplier = float64(volume) / 100.0
	}

	out := make([]byte, len(data)&^1)
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(binary.LittleEndian.Uint16(data[i:]))
		binary.LittleEndian.PutUint16(out[i:], uint16(int16(float64(s)*multiplier)))
	}
	return out
}
