package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies source failures so callers can decide between
// retrying and skipping the affected unit.
type ErrorKind int

const (
	// KindTransient covers network timeouts, rate limiting and server
	// errors. Worth retrying with backoff.
	KindTransient ErrorKind = iota

	// KindPermanent covers missing, private or deleted accounts and
	// videos. Retrying cannot help.
	KindPermanent
)

// SourceError wraps a failure from the external metadata source with its
// classification and the operation that produced it.
type SourceError struct {
	Kind   ErrorKind
	Op     string
	Target string
	Reason string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Target, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Target, e.Reason)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Transient builds a retryable source error.
func Transient(op, target, reason string, err error) error {
	return &SourceError{Kind: KindTransient, Op: op, Target: target, Reason: reason, Err: err}
}

// Permanent builds a non-retryable source error.
func Permanent(op, target, reason string, err error) error {
	return &SourceError{Kind: KindPermanent, Op: op, Target: target, Reason: reason, Err: err}
}

// IsTransient reports whether the error is worth retrying. Deadline
// expirations and timeout-flagged network errors count as transient even
// when they were not wrapped by this package.
func IsTransient(err error) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind == KindTransient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

// IsPermanent reports whether the error is a permanent source failure.
func IsPermanent(err error) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Kind == KindPermanent
}

// FailureReason produces the short reason string surfaced in the run
// summary for a failed account.
func FailureReason(err error) string {
	var se *SourceError
	if errors.As(err, &se) && se.Reason != "" {
		return se.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}
