package entities

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures a session can recover from
type ErrorKind int

const (
	KindUndefined ErrorKind = iota
	KindFileNotFound
	KindFormat
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindFileNotFound:
		return "file not found"
	case KindFormat:
		return "format error"
	case KindValidation:
		return "validation error"
	default:
		return "undefined error"
	}
}

// Description is the long-form text shown alongside an error report
func (k ErrorKind) Description() string {
	switch k {
	case KindFileNotFound:
		return "The roster file does not exist."
	case KindFormat:
		return "The roster file is not a valid JSON array of registrations."
	case KindValidation:
		return "The entered value was rejected."
	default:
		return "An unexpected I/O or runtime failure occurred."
	}
}

// Sentinel errors, matched by kind with errors.Is
var (
	ErrFileNotFound = &Error{Kind: KindFileNotFound}
	ErrFormat       = &Error{Kind: KindFormat}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUndefined    = &Error{Kind: KindUndefined}
)

// Error is a kinded failure raised by validation or persistence
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors outside the domain are undefined.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUndefined
}

// RootCause unwraps err down to the innermost error
func RootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
