package recipe

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a recipe or user id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid wraps every document validation failure.
	ErrInvalid = errors.New("invalid recipe")
)

// Validation error codes (E200-E299)
const (
	ErrCodeSchema  = "E200" // document violates the recipe schema
	ErrCodeEncode  = "E201" // document could not be encoded for validation
	ErrCodeCompile = "E202" // embedded schema failed to compile
)

// ValidationError describes one schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is the full set of violations found in one document.
// It matches ErrInvalid with errors.Is.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ErrInvalid.Error()
	}
	msg := fmt.Sprintf("%s: %s", ErrInvalid.Error(), errs[0].Error())
	if len(errs) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(errs)-1)
	}
	return msg
}

// Is reports whether target is ErrInvalid.
func (errs ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}

// AsValidationErrors extracts ValidationErrors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
