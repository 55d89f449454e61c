// ABOUTME: Timed audio unit and 100ns tick arithmetic
// ABOUTME: Units carry PCM bytes with presentation timestamp and duration
package audio

import "time"

// TicksPerSecond is the number of 100-nanosecond ticks in one second
const TicksPerSecond = 10_000_000

// Ticks is a timestamp or duration in 100-nanosecond units
type Ticks int64

// Duration converts ticks to a time.Duration
func (t Ticks) Duration() time.Duration {
	return time.Duration(t) * 100
}

// TicksFromDuration converts a time.Duration to ticks, truncating
func TicksFromDuration(d time.Duration) Ticks {
	return Ticks(d / 100)
}

// DurationTicks returns floor(byteCount / bytesPerFrame / sampleRate * 10^7).
// Integer arithmetic keeps exact results exact.
func DurationTicks(byteCount, sampleRate, bytesPerFrame int) Ticks {
	if sampleRate <= 0 || bytesPerFrame <= 0 {
		return 0
	}
	return Ticks(int64(byteCount) * TicksPerSecond / (int64(bytesPerFrame) * int64(sampleRate)))
}

// Unit is one timed buffer of audio handed to a sink.
// Ownership of Data passes to the receiver.
type Unit struct {
	Data      []byte
	Timestamp Ticks
	Duration  Ticks
}

// NewUnit copies pcm into a fresh unit and stamps it for the given format
func NewUnit(pcm []byte, timestamp Ticks, format Format) *Unit {
	data := make([]byte, len(pcm))
	copy(data, pcm)
	return &Unit{
		Data:      data,
		Timestamp: timestamp,
		Duration:  DurationTicks(len(data), format.SampleRate, format.BlockAlign()),
	}
}

// End returns the timestamp just past this unit
func (u *Unit) End() Ticks {
	return u.Timestamp + u.Duration
}

// Reset clears the unit for reuse, keeping its backing array
func (u *Unit) Reset() {
	u.Data = u.Data[:0]
	u.Timestamp = 0
	u.Duration = 0
}
