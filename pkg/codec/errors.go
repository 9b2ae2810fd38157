package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParam is returned for any validation violation,
	// conflicting flag combination, malformed image or absent required
	// argument. The session's prior state is left unchanged.
	ErrInvalidParam = errors.New("codec: invalid parameter")

	// ErrEngineConstruct is returned when the compressor engine cannot
	// be built during session open.
	ErrEngineConstruct = errors.New("codec: unable to construct compressor engine")

	// ErrEngineFailure is returned when the compressor engine reports a
	// failure mid-encode. The session should be treated as unusable
	// beyond closing it.
	ErrEngineFailure = errors.New("codec: compressor engine error")

	// ErrUnsupportedControl is returned for an unrecognized control
	// command identifier.
	ErrUnsupportedControl = errors.New("codec: unsupported control command")
)

// FieldError reports which configuration field violated which bound. It
// wraps ErrInvalidParam so callers can test the error class with
// errors.Is.
type FieldError struct {
	Field  string
	Detail string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("codec: %s %s", e.Field, e.Detail)
}

// Unwrap makes FieldError match ErrInvalidParam.
func (e *FieldError) Unwrap() error {
	return ErrInvalidParam
}

func fieldErr(field, detail string) error {
	return &FieldError{Field: field, Detail: detail}
}
