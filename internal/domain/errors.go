package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog failure. The set is closed: every error leaving
// a repository or service is exactly one of these.
type Kind string

const (
	KindInvalidCategory Kind = "invalid_category"
	KindCastError       Kind = "cast_error"
	KindConflict        Kind = "conflict"
	KindUnexpected      Kind = "unexpected"
)

// Origin identifies the layer an error was classified in
type Origin string

const (
	OriginRepository   Origin = "repository"
	OriginService      Origin = "service"
	OriginPreWriteHook Origin = "pre_write_hook"
)

// Error is a classified catalog failure. Err optionally wraps the
// underlying cause; callers branch on Kind, never on the cause.
type Error struct {
	Kind    Kind
	Origin  Origin
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Origin, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Origin, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error wrapping an optional cause
func NewError(kind Kind, origin Origin, message string, cause error) *Error {
	return &Error{Kind: kind, Origin: origin, Message: message, Err: cause}
}

// KindOf extracts the Kind of a classified error, or KindUnexpected when the
// error was never classified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
