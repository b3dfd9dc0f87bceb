package utils

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failure of the depth pipeline.
type ErrorKind int

// The kinds of failure a pipeline run can report.
const (
	KindUnknown ErrorKind = iota
	// KindInput is a missing, unreadable or undecodable source.
	KindInput
	// KindPrecondition is a caller handing a stage data it cannot work with.
	KindPrecondition
	// KindOutput is a destination that could not be written.
	KindOutput
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input error"
	case KindPrecondition:
		return "precondition violation"
	case KindOutput:
		return "output error"
	default:
		return "unknown error"
	}
}

// KindError is an error tagged with an ErrorKind.
type KindError struct {
	Kind ErrorKind
	err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.err)
}

// Unwrap returns the tagged cause.
func (e *KindError) Unwrap() error {
	return e.err
}

// Cause lets github.com/pkg/errors walk through the tag.
func (e *KindError) Cause() error {
	return e.err
}

func newKindError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, err: err}
}

// NewInputError tags err as an input error.
func NewInputError(err error) error {
	return newKindError(KindInput, err)
}

// NewInputErrorf builds a new input error.
func NewInputErrorf(format string, args ...interface{}) error {
	return NewInputError(errors.Errorf(format, args...))
}

// NewPreconditionError tags err as a precondition violation.
func NewPreconditionError(err error) error {
	return newKindError(KindPrecondition, err)
}

// NewPreconditionErrorf builds a new precondition violation.
func NewPreconditionErrorf(format string, args ...interface{}) error {
	return NewPreconditionError(errors.Errorf(format, args...))
}

// NewOutputError tags err as an output error.
func NewOutputError(err error) error {
	return newKindError(KindOutput, err)
}

// NewOutputErrorf builds a new output error.
func NewOutputErrorf(format string, args ...interface{}) error {
	return NewOutputError(errors.Errorf(format, args...))
}

// KindOf returns the outermost kind attached to err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var kerr *KindError
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
