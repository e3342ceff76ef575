package undo

import (
	"errors"
	"fmt"
)

// ErrNoHandler is returned when no handler is registered for a command's
// kind.
var ErrNoHandler = errors.New("no handler registered")

// Op names a stack transition.
type Op string

const (
	OpPush Op = "push"
	OpUndo Op = "undo"
	OpRedo Op = "redo"
)

// EffectError reports a failed undo or redo effect. The command is still
// on the stack it was taken from.
type EffectError struct {
	// Op is OpUndo or OpRedo.
	Op Op

	// Command is the command whose effect failed.
	Command Command

	// Err is the handler's error.
	Err error
}

// Error implements the error interface.
func (e *EffectError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Command.Kind, e.Command.ID, e.Err)
}

// Unwrap returns the handler's error.
func (e *EffectError) Unwrap() error {
	return e.Err
}

// IsEffectError returns true if err is or wraps an *EffectError.
func IsEffectError(err error) bool {
	var ee *EffectError
	return errors.As(err, &ee)
}

// AsEffectError returns the *EffectError in err's chain, if any.
func AsEffectError(err error) (*EffectError, bool) {
	var ee *EffectError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
