package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how callers should react to it.
type Kind int

const (
	// KindValidation marks malformed or out-of-range input. Never retried.
	KindValidation Kind = iota
	// KindNotFound marks a lookup for an id that does not exist.
	KindNotFound
	// KindTransient marks upstream/network failures that may succeed on retry.
	KindTransient
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

func isKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsValidation(err error) bool { return isKind(err, KindValidation) }
func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
func IsTransient(err error) bool  { return isKind(err, KindTransient) }
