package tts

import (
	"errors"
	"fmt"
)

// ErrMuxerUnavailable is raised pre-flight when ffmpeg cannot be found
// on PATH, before any synthesis work begins.
var ErrMuxerUnavailable = errors.New("ffmpeg not found on PATH")

// SynthesisError wraps any client construction, transport, or stream
// write failure from the speech endpoint. Callers never see the
// transport-specific error type directly.
type SynthesisError struct {
	cause error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("audio synthesis failed: %v", e.cause)
}

func (e *SynthesisError) Unwrap() error {
	return e.cause
}

func synthesisFailed(cause error) error {
	return &SynthesisError{cause: cause}
}

// MuxError reports a failed muxer invocation. No partial output is left
// in the final destination when it is returned.
type MuxError struct {
	cause  error
	stderr string
}

func (e *MuxError) Error() string {
	if e.stderr != "" {
		return fmt.Sprintf("muxing failed: %v: %s", e.cause, e.stderr)
	}
	return fmt.Sprintf("muxing failed: %v", e.cause)
}

func (e *MuxError) Unwrap() error {
	return e.cause
}
