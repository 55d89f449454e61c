// ABOUTME: Audio bridge forwarding timestamped PCM into a transcoding sink
// ABOUTME: Negotiates formats with the resampler and sink, then serialises writes
package bridge

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/Resonate-Protocol/pcmbridge/pkg/audio/resample"
	"github.com/Resonate-Protocol/pcmbridge/pkg/sink"
	"github.com/google/uuid"
)

// Negotiation step names reported in LastError
const (
	StepCreateResampler = "create resampler"
	StepResamplerInput  = "resampler set input type"
	StepResamplerOutput = "resampler set output type"
	StepResamplerUnit   = "allocate resampler unit"
	StepSinkInput       = "sink set input type"
)

// Resampler is the format-conversion capability configured during negotiation
type Resampler interface {
	SetInputFormat(f audio.Format) error
	SetOutputFormat(f audio.Format) error
	ProcessMessage(m resample.Message) error
	NewUnit() (*audio.Unit, error)
	Release()
}

// Config holds bridge configuration
type Config struct {
	StreamIndex uint32
	SampleRate  int
	Channels    int
	InputFloat  bool // 32-bit float input instead of 16-bit integer

	// NewResampler creates the resampler. Defaults to resample.NewTransform.
	NewResampler func() (Resampler, error)

	// OnPCM, when set, receives each unit after the sink accepted it
	OnPCM func(u audio.Unit)
}

// State is the bridge lifecycle state
type State int

const (
	StateCreated State = iota
	StateNegotiating
	StateReady
	StateFailed
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateNegotiating:
		return "negotiating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Stats counts write activity
type Stats struct {
	UnitsWritten  uint64
	BytesWritten  uint64
	LastTimestamp audio.Ticks
	WriteFailures uint64
}

// Bridge forwards PCM buffers to one stream of a borrowed sink. A nil *Bridge
// is a valid invalid handle: every method reports ErrInvalidHandle or the
// "Invalid encoder" message.
type Bridge struct {
	id        string
	config    Config
	sink      sink.Sink
	resampler Resampler
	scratch   *audio.Unit
	input     audio.Format

	mu        sync.Mutex
	state     State
	lastError string
	err       error
	stats     Stats
}

// New negotiates formats and returns a bridge. It never returns nil; a
// failed negotiation yields a bridge in StateFailed whose LastError names
// the step that failed.
func New(s sink.Sink, config Config) *Bridge {
	if config.NewResampler == nil {
		config.NewResampler = defaultResampler
	}

	representation := audio.Int16
	if config.InputFloat {
		representation = audio.Float32
	}

	b := &Bridge{
		id:     uuid.New().String(),
		config: config,
		sink:   s,
		state:  StateCreated,
		input: audio.Format{
			Codec:          "pcm",
			SampleRate:     config.SampleRate,
			Channels:       config.Channels,
			Representation: representation,
		},
	}

	b.state = StateNegotiating
	if err := b.negotiate(); err != nil {
		b.err = err
		b.lastError = err.Error()
		b.state = StateFailed
		log.Printf("[bridge %s] Negotiation failed: %v", b.id, err)
		return b
	}

	b.state = StateReady
	log.Printf("[bridge %s] Ready: stream %d, %s", b.id, config.StreamIndex, b.input)
	return b
}

func defaultResampler() (Resampler, error) {
	t, err := resample.NewTransform()
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (b *Bridge) negotiate() error {
	r, err := b.config.NewResampler()
	if err != nil {
		return &ConfigError{Step: StepCreateResampler, Err: err}
	}
	if r == nil {
		return &ConfigError{Step: StepCreateResampler, Err: errors.New("no resampler returned")}
	}
	b.resampler = r

	if err := r.SetInputFormat(b.input); err != nil {
		return &ConfigError{Step: StepResamplerInput, Err: err}
	}

	output := audio.PCM16(b.config.SampleRate, b.config.Channels)
	if err := r.SetOutputFormat(output); err != nil {
		return &ConfigError{Step: StepResamplerOutput, Err: err}
	}

	// Streaming notifications are advisory
	for _, m := range []resample.Message{resample.MessageBeginStreaming, resample.MessageStartOfStream} {
		if err := r.ProcessMessage(m); err != nil {
			log.Printf("[bridge %s] Resampler ignored %s: %v", b.id, m, err)
		}
	}

	unit, err := r.NewUnit()
	if err != nil {
		return &ConfigError{Step: StepResamplerUnit, Err: err}
	}
	b.scratch = unit

	if b.sink == nil {
		return &ConfigError{Step: StepSinkInput, Err: errors.New("no sink")}
	}
	if err := setSinkFormat(b.sink, b.config.StreamIndex, output); err != nil {
		return &ConfigError{Step: StepSinkInput, Err: err}
	}
	return nil
}

// setSinkFormat declares f to s. A typed-nil or broken sink panics inside
// SetInputFormat; that becomes an error so New still returns a bridge.
func setSinkFormat(s sink.Sink, stream uint32, f audio.Format) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return s.SetInputFormat(stream, f)
}

// ID returns the bridge's log identifier
func (b *Bridge) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// InputFormat returns the PCM format callers write
func (b *Bridge) InputFormat() audio.Format {
	if b == nil {
		return audio.Format{}
	}
	return b.input
}

// Write submits one PCM buffer stamped with ts. The buffer is copied; the
// unit's duration is derived from its length and the input format.
// Writes are serialised; their order is the order they reach the sink.
func (b *Bridge) Write(pcm []byte, ts audio.Ticks) error {
	if b == nil {
		return ErrInvalidHandle
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateReady {
		return ErrInvalidHandle
	}

	unit := audio.NewUnit(pcm, ts, b.input)

	if err := b.sink.WriteUnit(b.config.StreamIndex, unit); err != nil {
		b.lastError = "sink write failed: " + err.Error()
		b.stats.WriteFailures++
		log.Printf("[bridge %s] Write at %d failed: %v", b.id, ts, err)
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	b.stats.UnitsWritten++
	b.stats.BytesWritten += uint64(len(pcm))
	b.stats.LastTimestamp = ts

	if b.config.OnPCM != nil {
		b.config.OnPCM(*unit)
	}
	return nil
}

// Finalize ends the write session. Units go straight to the sink, so there
// is nothing to drain. Repeated calls succeed.
func (b *Bridge) Finalize() error {
	if b == nil {
		return ErrInvalidHandle
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateReady {
		return ErrInvalidHandle
	}
	return nil
}

// Close tears the bridge down: the resampler, if one was created, receives
// end-of-stream and is released. The sink is borrowed and left open.
// Close is safe on nil and repeated calls.
func (b *Bridge) Close() {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateDestroyed {
		return
	}

	if b.resampler != nil {
		if err := b.resampler.ProcessMessage(resample.MessageEndOfStream); err != nil {
			log.Printf("[bridge %s] Resampler ignored %s: %v", b.id, resample.MessageEndOfStream, err)
		}
		b.resampler.Release()
		b.resampler = nil
	}
	b.scratch = nil
	b.state = StateDestroyed
}

// LastError returns the most recent diagnostic, empty when none occurred
func (b *Bridge) LastError() string {
	if b == nil {
		return invalidHandleMessage
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastError
}

// Err returns the negotiation error, nil for a bridge that became ready
func (b *Bridge) Err() error {
	if b == nil {
		return ErrInvalidHandle
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// State returns the lifecycle state
func (b *Bridge) State() State {
	if b == nil {
		return StateDestroyed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Ready reports whether the bridge accepts writes
func (b *Bridge) Ready() bool {
	return b.State() == StateReady
}

// Stats returns write counters
func (b *Bridge) Stats() Stats {
	if b == nil {
		return Stats{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
