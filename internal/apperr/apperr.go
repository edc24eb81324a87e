// Package apperr carries the error taxonomy the HTTP layer translates into
// status codes: validation and conflict failures are the caller's fault,
// not-found maps to 404, and store failures are server errors whose cause is
// logged but never shown to clients.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStore
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Message is the short human-readable text safe to return to a client.
func (e *Error) Message() string { return e.msg }

func Validation(msg string) error {
	return &Error{kind: KindValidation, msg: msg}
}

func NotFound(msg string) error {
	return &Error{kind: KindNotFound, msg: msg}
}

func Conflict(msg string) error {
	return &Error{kind: KindConflict, msg: msg}
}

// Store wraps a backing-store failure. The wrapped cause stays available for
// logs; clients only ever see the generic message.
func Store(err error) error {
	return &Error{kind: KindStore, msg: "Internal server error", err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.msg
	}
	return "Internal server error"
}
