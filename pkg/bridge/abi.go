// ABOUTME: Handle-based entry points mirroring the native encoder interface
// ABOUTME: Maps bridges to opaque handles and errors to integer status codes
package bridge

import (
	"errors"
	"sync"

	"github.com/Resonate-Protocol/pcmbridge/pkg/audio"
	"github.com/Resonate-Protocol/pcmbridge/pkg/sink"
)

// Status codes returned by the handle entry points
const (
	StatusSuccess  int32 = 0
	StatusInit     int32 = -1
	StatusWrite    int32 = -2
	StatusFinalize int32 = -3
	StatusInvalid  int32 = -4
)

// Handle is an opaque bridge reference. Zero is the null handle.
type Handle uintptr

var handles = struct {
	sync.Mutex
	next    Handle
	bridges map[Handle]*Bridge
}{bridges: make(map[Handle]*Bridge)}

func register(b *Bridge) Handle {
	handles.Lock()
	defer handles.Unlock()

	handles.next++
	handles.bridges[handles.next] = b
	return handles.next
}

func lookup(h Handle) *Bridge {
	handles.Lock()
	defer handles.Unlock()
	return handles.bridges[h]
}

// StatusOf maps an error from the bridge API to its status code
func StatusOf(err error) int32 {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrInvalidHandle):
		return StatusInvalid
	case errors.Is(err, ErrConfiguration):
		return StatusInit
	default:
		return StatusWrite
	}
}

// Create builds a bridge and returns its handle. The handle is valid even
// when negotiation failed; GetError then explains why.
func Create(s sink.Sink, streamIndex uint32, sampleRate, channels, inputIsFloat int32) Handle {
	b := New(s, Config{
		StreamIndex: streamIndex,
		SampleRate:  int(sampleRate),
		Channels:    int(channels),
		InputFloat:  inputIsFloat != 0,
	})
	return register(b)
}

// WritePCM submits the first size bytes of data stamped with timestampHns
func WritePCM(h Handle, data []byte, size uint32, timestampHns int64) int32 {
	b := lookup(h)
	if !b.Ready() {
		return StatusInvalid
	}
	if uint64(size) > uint64(len(data)) {
		b.mu.Lock()
		b.lastError = "sink write failed: size exceeds buffer length"
		b.mu.Unlock()
		return StatusWrite
	}
	return StatusOf(b.Write(data[:size], audio.Ticks(timestampHns)))
}

// Finalize ends the write session for h
func Finalize(h Handle) int32 {
	return StatusOf(lookup(h).Finalize())
}

// Destroy closes the bridge and invalidates h. Unknown handles are ignored.
func Destroy(h Handle) {
	handles.Lock()
	b := handles.bridges[h]
	delete(handles.bridges, h)
	handles.Unlock()

	b.Close()
}

// GetError returns the last diagnostic for h
func GetError(h Handle) string {
	return lookup(h).LastError()
}
