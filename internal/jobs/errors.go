package jobs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindCapacityExceeded Kind = iota
	KindNotFound
	KindNotCompleted
	KindFileMissing
	KindExtractionFailed
	KindTranscodeFailed
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindCapacityExceeded:
		return "CapacityExceeded"
	case KindNotFound:
		return "NotFound"
	case KindNotCompleted:
		return "NotCompleted"
	case KindFileMissing:
		return "FileMissing"
	case KindExtractionFailed:
		return "ExtractionFailed"
	case KindTranscodeFailed:
		return "TranscodeFailed"
	default:
		return "Unknown"
	}
}

// Error is the caller-facing error for every job operation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewErrorWithCause(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err carries the given taxonomy kind.
func IsKind(err error, kind Kind) bool {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind == kind
	}
	return false
}
