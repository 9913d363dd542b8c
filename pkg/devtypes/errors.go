package devtypes

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can tell invocation problems
// apart from ordinary command failures.
type ErrorKind string

// Error kinds produced by the dispatcher and the command modules.
const (
	KindUnknownCommand  ErrorKind = "UnknownCommand"
	KindMalformedInput  ErrorKind = "MalformedInput"
	KindInvalidArgument ErrorKind = "InvalidArgument"
	KindNotInitialized  ErrorKind = "NotInitialized"
	KindIOFailure       ErrorKind = "IOFailure"
	KindToolUnavailable ErrorKind = "ToolUnavailable"
	KindInternalFault   ErrorKind = "InternalFault"
)

// Error is a classified error. Message is shown to the user; Err is the
// optional underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, which lets
// errors.Is(err, &Error{Kind: KindIOFailure}) match any IO failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are internal faults.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternalFault
}

// InvalidArgumentf reports a module-level validation failure.
func InvalidArgumentf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotInitializedf reports that the Devion config has not been created yet.
func NotInitializedf(format string, args ...any) error {
	return &Error{Kind: KindNotInitialized, Message: fmt.Sprintf(format, args...)}
}

// IOFailuref reports a filesystem failure without an underlying cause.
func IOFailuref(format string, args ...any) error {
	return &Error{Kind: KindIOFailure, Message: fmt.Sprintf(format, args...)}
}

// WrapIO classifies err as a filesystem failure. A nil err stays nil.
func WrapIO(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIOFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// ToolUnavailablef reports a missing or failing external tool.
func ToolUnavailablef(format string, args ...any) error {
	return &Error{Kind: KindToolUnavailable, Message: fmt.Sprintf(format, args...)}
}
