// Package errors defines the domain error type shared by services and
// transports. Services return these; transports map codes to status lines.
//
// Infrastructure facts (not found, unavailable) live in pkg/platform/sentinel
// and are translated into a Code at the service boundary.
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error identifier.
type Code string

// Generic codes.
const (
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
)

// Relationship codes. These are user errors: rendered to the player, never
// treated as faults.
const (
	CodeSelfTarget        Code = "self_target"
	CodeTargetUnreachable Code = "target_unreachable"
	CodeUnknownTarget     Code = "unknown_target"
	CodeNotFriends        Code = "not_friends"
	CodeAlreadyFriends    Code = "already_friends"
	CodeNoSuchInvitation  Code = "no_such_invitation"
	CodeAlreadySent       Code = "already_sent"
	CodeAlreadyReceived   Code = "already_received"
)

// Relationship infrastructure codes.
const (
	CodeIdentityLoadFailed  Code = "identity_load_failed"
	CodeResolverUnavailable Code = "resolver_unavailable"
)

// Error carries a Code, a human readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. A nil err still yields an error so
// callers can wrap unconditionally inside an `if err != nil` branch.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost domain error in err's chain, or
// the empty Code when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Is is an alias of HasCode kept for handler call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// IsUserError reports whether err is a rejection the caller can act on, as
// opposed to an infrastructure or internal failure.
func IsUserError(err error) bool {
	switch CodeOf(err) {
	case CodeSelfTarget, CodeTargetUnreachable, CodeUnknownTarget, CodeNotFriends,
		CodeAlreadyFriends, CodeNoSuchInvitation, CodeAlreadySent, CodeAlreadyReceived,
		CodeBadRequest, CodeValidation, CodeInvalidInput, CodeNotFound, CodeConflict:
		return true
	default:
		return false
	}
}
