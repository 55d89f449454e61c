// ABOUTME: Transcoding sink that frames and encodes PCM streams into packets
// ABOUTME: Buffers per-stream PCM, cuts fixed-duration frames and encodes to Opus or PCM16
package sink

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio/decode"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio/encode"
)

// DefaultFrameDuration is the packet duration used when none is configured
const DefaultFrameDuration = 20 * time.Millisecond

// ErrNoWriter is returned when a transcoder is created without a packet writer
var ErrNoWriter = errors.New("packet writer is required")

// TranscoderConfig holds transcoder configuration
type TranscoderConfig struct {
	Writer        PacketWriter
	FrameDuration time.Duration // Opus accepts 2.5, 5, 10, 20, 40 or 60ms
}

// Transcoder is a multi-stream sink. Each stream is added with a target
// encoding, receives a PCM16 input declaration and then timed units.
type Transcoder struct {
	config  TranscoderConfig
	mu      sync.Mutex
	streams []*stream
	closed  bool
}

type stream struct {
	target       audio.Format
	input        *audio.Format
	decoder      decode.Decoder
	encoder      encode.Encoder
	frameSamples int
	pending      []int32
	nextTS       audio.Ticks
	packets      uint64
}

// StreamStats reports per-stream packet output
type StreamStats struct {
	Packets        uint64
	PendingSamples int
}

// NewTranscoder creates a transcoding sink writing packets to config.Writer
func NewTranscoder(config TranscoderConfig) (*Transcoder, error) {
	if config.Writer == nil {
		return nil, ErrNoWriter
	}
	if config.FrameDuration <= 0 {
		config.FrameDuration = DefaultFrameDuration
	}
	return &Transcoder{config: config}, nil
}

// AddStream registers an output stream and returns its index
func (t *Transcoder) AddStream(target audio.Format) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, &StatusError{Op: "add stream", Code: CodeNotAccepting}
	}
	if target.Codec != "opus" && target.Codec != "pcm" {
		return 0, &StatusError{Op: "add stream", Code: CodeCodecNotFound, Err: fmt.Errorf("unsupported codec: %s", target.Codec)}
	}
	target.Representation = audio.Int16
	if err := target.Validate(); err != nil {
		return 0, &StatusError{Op: "add stream", Code: CodeInvalidMediaType, Err: err}
	}

	t.streams = append(t.streams, &stream{target: target})
	index := uint32(len(t.streams) - 1)
	log.Printf("Transcoder stream %d added: %s", index, target)
	return index, nil
}

func (t *Transcoder) lookup(op string, index uint32) (*stream, error) {
	if t.closed {
		return nil, &StatusError{Op: op, Code: CodeNotAccepting}
	}
	if int(index) >= len(t.streams) {
		return nil, &StatusError{Op: op, Code: CodeInvalidStreamNumber}
	}
	return t.streams[index], nil
}

// SetInputFormat declares PCM16 input for a stream. The input must match the
// stream's target sample rate and channel count.
func (t *Transcoder) SetInputFormat(index uint32, f audio.Format) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup("set input format", index)
	if err != nil {
		return err
	}

	if f.Codec != "pcm" || f.Representation != audio.Int16 || !f.Compatible(s.target) {
		return &StatusError{Op: "set input format", Code: CodeInvalidMediaType,
			Err: fmt.Errorf("cannot convert %s to %s", f, s.target)}
	}

	frameSamples := int(int64(f.SampleRate)*int64(t.config.FrameDuration)/int64(time.Second)) * f.Channels
	if frameSamples < f.Channels {
		return &StatusError{Op: "set input format", Code: CodeInvalidMediaType,
			Err: fmt.Errorf("frame duration %v is shorter than one sample at %dHz", t.config.FrameDuration, f.SampleRate)}
	}

	dec, err := decode.New(f)
	if err != nil {
		return &StatusError{Op: "set input format", Code: CodeInvalidMediaType, Err: err}
	}
	enc, err := encode.New(s.target)
	if err != nil {
		return &StatusError{Op: "set input format", Code: CodeCodecNotFound, Err: err}
	}

	if s.encoder != nil {
		s.encoder.Close()
	}
	s.input = &f
	s.decoder = dec
	s.encoder = enc
	s.frameSamples = frameSamples
	s.pending = s.pending[:0]
	return nil
}

// WriteUnit buffers a unit and emits every complete frame. A unit arriving
// with nothing buffered resets the packet clock to its timestamp.
func (t *Transcoder) WriteUnit(index uint32, u *audio.Unit) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup("write unit", index)
	if err != nil {
		return err
	}
	if s.input == nil {
		return &StatusError{Op: "write unit", Code: CodeNotAccepting}
	}

	samples, err := s.decoder.Decode(u.Data)
	if err != nil {
		return fmt.Errorf("failed to decode unit: %w", err)
	}

	if len(s.pending) == 0 {
		s.nextTS = u.Timestamp
	}
	s.pending = append(s.pending, samples...)

	for len(s.pending) >= s.frameSamples {
		if err := t.emit(index, s, s.pending[:s.frameSamples]); err != nil {
			return err
		}
		n := copy(s.pending, s.pending[s.frameSamples:])
		s.pending = s.pending[:n]
	}
	return nil
}

func (t *Transcoder) emit(index uint32, s *stream, frame []int32) error {
	data, err := s.encoder.Encode(frame)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	frames := len(frame) / s.input.Channels
	duration := audio.DurationTicks(frames, s.input.SampleRate, 1)

	p := Packet{
		Stream:    index,
		Data:      data,
		Timestamp: s.nextTS,
		Duration:  duration,
	}
	if err := t.config.Writer.WritePacket(p); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}

	s.nextTS += duration
	s.packets++
	return nil
}

// Flush emits any buffered partial frame. Opus frames are padded with silence.
func (t *Transcoder) Flush(index uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup("flush", index)
	if err != nil {
		return err
	}
	return t.flush(index, s)
}

func (t *Transcoder) flush(index uint32, s *stream) error {
	if s.input == nil || len(s.pending) == 0 {
		return nil
	}

	frame := s.pending
	if s.target.Codec == "opus" {
		for len(frame) < s.frameSamples {
			frame = append(frame, 0)
		}
	}
	err := t.emit(index, s, frame)
	s.pending = s.pending[:0]
	return err
}

// Stats returns packet counters for a stream
func (t *Transcoder) Stats(index uint32) (StreamStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup("stats", index)
	if err != nil {
		return StreamStats{}, err
	}
	return StreamStats{Packets: s.packets, PendingSamples: len(s.pending)}, nil
}

// Close flushes every stream and releases encoders. The packet writer is
// left open for its owner to close.
func (t *Transcoder) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	var firstErr error
	for i, s := range t.streams {
		if err := t.flush(uint32(i), s); err != nil && firstErr == nil {
			firstErr = err
		}
		if s.encoder != nil {
			s.encoder.Close()
		}
		if s.decoder != nil {
			s.decoder.Close()
		}
	}
	t.closed = true
	return firstErr
}
