package errors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig     Kind = "config"
	KindValidation Kind = "validation"
	KindProvider   Kind = "provider"
	KindTransport  Kind = "transport"
	KindUnknown    Kind = "unknown"
)

// Error is the typed error carried through the detection pipeline.
// Code is the machine-readable tag shown to callers; Cause stays server side.
type Error struct {
	Kind    Kind
	Op      string
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap returns nil for a nil err and keeps an already typed error unchanged.
func Wrap(kind Kind, op, code, message string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, code, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Code:    code,
		Message: message,
	}
}

// IsKind checks whether the first typed error in the chain matches kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// CodeOf returns the tag of the first typed error in the chain, or fallback.
func CodeOf(err error, fallback string) string {
	var target *Error
	if errors.As(err, &target) && target.Code != "" {
		return target.Code
	}
	return fallback
}
