package dispatch

import (
	"errors"
	"fmt"
)

// DispatchError represents a misuse of the dispatcher.
//
// Unrecognized action types are not errors: stores ignore them so that
// new action kinds never break existing stores.
type DispatchError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Token identifies the registration involved, if any.
	Token Token
}

// ErrorCode categorizes dispatcher errors.
type ErrorCode string

const (
	// ErrCodeReentrantDispatch indicates Dispatch was called during a dispatch.
	ErrCodeReentrantDispatch ErrorCode = "REENTRANT_DISPATCH"

	// ErrCodeUnknownToken indicates WaitFor named a token that is not registered.
	ErrCodeUnknownToken ErrorCode = "UNKNOWN_TOKEN"

	// ErrCodeCircularWait indicates WaitFor named a callback that is itself waiting.
	ErrCodeCircularWait ErrorCode = "CIRCULAR_WAIT"

	// ErrCodeNotDispatching indicates WaitFor was called outside a dispatch.
	ErrCodeNotDispatching ErrorCode = "NOT_DISPATCHING"
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (token=%s)", e.Code, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsReentrantError returns true if err is a re-entrant dispatch error.
// Uses errors.As to handle wrapped errors.
func IsReentrantError(err error) bool {
	return hasCode(err, ErrCodeReentrantDispatch)
}

// IsUnknownTokenError returns true if err names an unregistered token.
func IsUnknownTokenError(err error) bool {
	return hasCode(err, ErrCodeUnknownToken)
}

// IsCircularWaitError returns true if err is a circular WaitFor.
func IsCircularWaitError(err error) bool {
	return hasCode(err, ErrCodeCircularWait)
}

// IsNotDispatchingError returns true if WaitFor was called outside a dispatch.
func IsNotDispatchingError(err error) bool {
	return hasCode(err, ErrCodeNotDispatching)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

func newReentrantError(a fmt.Stringer) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeReentrantDispatch,
		Message: fmt.Sprintf("cannot dispatch %s in the middle of a dispatch", a),
	}
}

func newUnknownTokenError(token Token) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeUnknownToken,
		Message: "token does not map to a registered callback",
		Token:   token,
	}
}

func newCircularWaitError(token Token) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeCircularWait,
		Message: "circular dependency detected while waiting",
		Token:   token,
	}
}

func newNotDispatchingError() *DispatchError {
	return &DispatchError{
		Code:    ErrCodeNotDispatching,
		Message: "must be invoked while dispatching",
	}
}
