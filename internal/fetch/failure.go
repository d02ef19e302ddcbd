package fetch

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a fetch attempt failed. The retry policy keys
// off this, not off the underlying error text.
type FailureKind string

const (
	KindRateLimited  FailureKind = "RATE_LIMITED"
	KindNotFound     FailureKind = "NOT_FOUND"
	KindAccessDenied FailureKind = "ACCESS_DENIED"
	KindTransient    FailureKind = "TRANSIENT"
)

// Terminal reports whether this kind can never succeed on retry.
func (k FailureKind) Terminal() bool {
	return k == KindNotFound || k == KindAccessDenied
}

// Error wraps a fetch failure with its classification.
type Error struct {
	Kind  FailureKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("fetch failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a classified fetch error.
func NewError(kind FailureKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Classify extracts the FailureKind from an error returned by a Fetcher.
// Unclassified errors (network faults, timeouts, decode problems) count as
// TRANSIENT.
func Classify(err error) FailureKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}
