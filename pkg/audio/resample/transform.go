// ABOUTME: Format-negotiated resampling transform with streaming lifecycle messages
// ABOUTME: Converts int16 or float32 PCM units to int16 PCM at the output rate
package resample

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio/decode"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio/encode"
)

// Message is a streaming notification sent to the transform
type Message uint32

const (
	// MessageDrain discards held interpolation state
	MessageDrain Message = 0x00000001
	// MessageBeginStreaming prepares the transform for processing
	MessageBeginStreaming Message = 0x10000000
	// MessageEndStreaming pauses processing until streaming begins again
	MessageEndStreaming Message = 0x10000001
	// MessageEndOfStream marks the end of input; processing stops until streaming begins again
	MessageEndOfStream Message = 0x10000002
	// MessageStartOfStream marks the first unit of a new stream
	MessageStartOfStream Message = 0x10000003
)

func (m Message) String() string {
	switch m {
	case MessageDrain:
		return "drain"
	case MessageBeginStreaming:
		return "begin-streaming"
	case MessageEndStreaming:
		return "end-streaming"
	case MessageEndOfStream:
		return "end-of-stream"
	case MessageStartOfStream:
		return "start-of-stream"
	default:
		return fmt.Sprintf("message(0x%08X)", uint32(m))
	}
}

var (
	// ErrFormatNotSet is returned when streaming is requested before both formats are set
	ErrFormatNotSet = errors.New("input and output formats must be set")
	// ErrNotStreaming is returned by Process outside a begin/end streaming pair
	ErrNotStreaming = errors.New("transform is not streaming")
	// ErrReleased is returned by every call after Release
	ErrReleased = errors.New("transform released")
	// ErrFormatMismatch is returned when input and output formats cannot be paired
	ErrFormatMismatch = errors.New("format mismatch")
	// ErrUnknownMessage is returned for messages the transform does not handle
	ErrUnknownMessage = errors.New("unknown message")
)

// Transform resamples PCM units between a negotiated input and output format
type Transform struct {
	mu        sync.Mutex
	input     *audio.Format
	output    *audio.Format
	decoder   decode.Decoder
	encoder   encode.Encoder
	resampler *Resampler
	streaming bool
	released  bool
	buf       []int32
}

// NewTransform creates an unconfigured transform
func NewTransform() (*Transform, error) {
	return &Transform{}, nil
}

// SetInputFormat declares the PCM format of units passed to Process
func (t *Transform) SetInputFormat(f audio.Format) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid input format: %w", err)
	}
	if t.output != nil && t.output.Channels != f.Channels {
		return fmt.Errorf("%w: input has %d channels, output has %d", ErrFormatMismatch, f.Channels, t.output.Channels)
	}

	dec, err := decode.NewPCM(f)
	if err != nil {
		return fmt.Errorf("failed to create input decoder: %w", err)
	}

	t.input = &f
	t.decoder = dec
	t.resampler = nil
	return nil
}

// SetOutputFormat declares the format Process produces. Output is always int16.
func (t *Transform) SetOutputFormat(f audio.Format) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}
	if f.Representation != audio.Int16 {
		return fmt.Errorf("%w: output must be int16, got %v", ErrFormatMismatch, f.Representation)
	}
	if t.input != nil && t.input.Channels != f.Channels {
		return fmt.Errorf("%w: input has %d channels, output has %d", ErrFormatMismatch, t.input.Channels, f.Channels)
	}

	enc, err := encode.NewPCM(f)
	if err != nil {
		return fmt.Errorf("failed to create output encoder: %w", err)
	}

	t.output = &f
	t.encoder = enc
	t.resampler = nil
	return nil
}

// InputFormat returns the declared input format
func (t *Transform) InputFormat() (audio.Format, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.input == nil {
		return audio.Format{}, false
	}
	return *t.input, true
}

// OutputFormat returns the declared output format
func (t *Transform) OutputFormat() (audio.Format, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.output == nil {
		return audio.Format{}, false
	}
	return *t.output, true
}

// ProcessMessage handles a streaming notification
func (t *Transform) ProcessMessage(m Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if t.input == nil || t.output == nil {
		return fmt.Errorf("%s: %w", m, ErrFormatNotSet)
	}

	switch m {
	case MessageBeginStreaming, MessageStartOfStream:
		if t.resampler == nil {
			t.resampler = New(t.input.SampleRate, t.output.SampleRate, t.input.Channels)
		}
		t.streaming = true
	case MessageEndStreaming, MessageEndOfStream:
		t.streaming = false
		if t.resampler != nil {
			t.resampler.Reset()
		}
	case MessageDrain:
		if t.resampler != nil {
			t.resampler.Reset()
		}
	default:
		return fmt.Errorf("%s: %w", m, ErrUnknownMessage)
	}
	return nil
}

// NewUnit allocates an output unit with room for 100ms of output audio
func (t *Transform) NewUnit() (*audio.Unit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return nil, ErrReleased
	}
	if t.output == nil {
		return nil, fmt.Errorf("output: %w", ErrFormatNotSet)
	}
	return &audio.Unit{Data: make([]byte, 0, t.output.AvgBytesPerSec()/10)}, nil
}

// Process resamples in into out. out keeps in's timestamp and gets a duration
// derived from the bytes produced. The last input frame is held until the
// next call, so output lags input by one frame.
func (t *Transform) Process(in, out *audio.Unit) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if !t.streaming || t.resampler == nil {
		return ErrNotStreaming
	}

	samples, err := t.decoder.Decode(in.Data)
	if err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}

	need := t.resampler.OutputSamplesNeeded(len(samples)) + t.output.Channels
	if cap(t.buf) < need {
		t.buf = make([]int32, need)
	}
	n := t.resampler.Resample(samples, t.buf[:need])

	data, err := t.encoder.Encode(t.buf[:n])
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	out.Data = append(out.Data[:0], data...)
	out.Timestamp = in.Timestamp
	out.Duration = audio.DurationTicks(len(out.Data), t.output.SampleRate, t.output.BlockAlign())
	return nil
}

// Release frees the transform. Further calls fail with ErrReleased.
func (t *Transform) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}
	if t.decoder != nil {
		t.decoder.Close()
	}
	if t.encoder != nil {
		t.encoder.Close()
	}
	t.decoder = nil
	t.encoder = nil
	t.resampler = nil
	t.buf = nil
	t.streaming = false
	t.released = true
}
