package service

import (
	"errors"
	"fmt"
)

// Reason is a stable, machine-readable code for a business outcome. Callers
// branch on reasons instead of matching error message strings.
type Reason string

const (
	ReasonInvalidInput           Reason = "INVALID_INPUT"
	ReasonNotFound               Reason = "NOT_FOUND"
	ReasonInvalidStateTransition Reason = "INVALID_STATE_TRANSITION"
	ReasonDurationExceeded       Reason = "DURATION_EXCEEDED"
	ReasonEmptyTranscript        Reason = "EMPTY_TRANSCRIPT"
	ReasonEngineFailure          Reason = "ENGINE_FAILURE"
	ReasonNotEntitled            Reason = "NOT_ENTITLED"
)

// Error is the tagged error type carried across the pipeline. Two Errors
// match under errors.Is when their reasons are equal, so sentinel values
// below can be used as targets.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Reason == t.Reason
}

// Sentinel targets for errors.Is checks.
var (
	ErrInvalidInput           = &Error{Reason: ReasonInvalidInput}
	ErrNotFound               = &Error{Reason: ReasonNotFound}
	ErrInvalidStateTransition = &Error{Reason: ReasonInvalidStateTransition}
	ErrDurationExceeded       = &Error{Reason: ReasonDurationExceeded}
	ErrEmptyTranscript        = &Error{Reason: ReasonEmptyTranscript}
	ErrEngineFailure          = &Error{Reason: ReasonEngineFailure}
	ErrNotEntitled            = &Error{Reason: ReasonNotEntitled}
)

func invalidInput(format string, a ...any) *Error {
	return &Error{Reason: ReasonInvalidInput, Message: fmt.Sprintf(format, a...)}
}

func notFound() *Error {
	// Absence and foreign ownership are deliberately indistinguishable.
	return &Error{Reason: ReasonNotFound, Message: "recording not found"}
}

func invalidTransition(format string, a ...any) *Error {
	return &Error{Reason: ReasonInvalidStateTransition, Message: fmt.Sprintf(format, a...)}
}

func engineFailure(msg string, err error) *Error {
	return &Error{Reason: ReasonEngineFailure, Message: msg, Err: err}
}

// ReasonOf extracts the reason from err, if it carries one.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}
