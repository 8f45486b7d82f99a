package state

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState matches every transition attempted from the wrong state.
	ErrInvalidState = errors.New("invalid activation state")
	// ErrActivation matches every failed activation.
	ErrActivation = errors.New("activation failed")
)

// InvalidStateError reports a transition or requirement that does not hold.
type InvalidStateError struct {
	Op   string
	Want ActivationState
	Got  ActivationState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: plugin is %s, must be %s", e.Op, e.Got, e.Want)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ActivationError reports why Activate did not reach Activated.
type ActivationError struct {
	SampleRate float64
	Range      BlockSizeRange
	Reason     string
	// Err is set when the plugin itself rejected the configuration.
	Err error
}

func (e *ActivationError) Error() string {
	msg := fmt.Sprintf("activate at %g Hz, frames %s: %s", e.SampleRate, e.Range, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ActivationError) Is(target error) bool {
	return target == ErrActivation
}

func (e *ActivationError) Unwrap() error {
	return e.Err
}
