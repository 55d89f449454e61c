// ABOUTME: Error values returned by the audio bridge
// ABOUTME: Sentinels for invalid handles, negotiation and write failures
package bridge

import "errors"

var (
	// ErrInvalidHandle is returned for nil, failed or destroyed bridges
	ErrInvalidHandle = errors.New("invalid encoder")

	// ErrConfiguration marks a failed negotiation step
	ErrConfiguration = errors.New("configuration failed")

	// ErrWrite marks a failed submission to the sink
	ErrWrite = errors.New("write failed")
)

// invalidHandleMessage is reported by LastError on a nil bridge
const invalidHandleMessage = "Invalid encoder"

// ConfigError records which negotiation step failed
type ConfigError struct {
	Step string
	Err  error
}

func (e *ConfigError) Error() string {
	return e.Step + " failed: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}
