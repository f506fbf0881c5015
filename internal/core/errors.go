package core

import "errors"

var (
	// ErrSequenceViolation means two actors appended to the same session
	// log concurrently. Programming error, fatal for the session.
	ErrSequenceViolation = errors.New("event log: concurrent append violates single-writer invariant")

	// ErrCompactionDeferred means the summarization call failed; the log is
	// unchanged and compaction will be retried on the next append.
	ErrCompactionDeferred = errors.New("compaction deferred")

	// ErrToolUnavailable is surfaced after the dispatcher exhausts its retry
	// bound for a retryable failure.
	ErrToolUnavailable = errors.New("tool unavailable")

	// ErrDuplicateRequest means a correlation id was reused while the
	// original request was still outstanding.
	ErrDuplicateRequest = errors.New("duplicate correlation id")

	// ErrSessionClosed is returned for any operation on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// FailureKind classifies tool and engine call failures. The retryable set is
// fixed; everything else fails the call immediately.
type FailureKind string

const (
	FailureRateLimited   FailureKind = "rate_limited"
	FailureUnavailable   FailureKind = "unavailable"
	FailureTimeout       FailureKind = "timeout"
	FailureMalformed     FailureKind = "malformed_request"
	FailureUnknownMethod FailureKind = "unknown_method"
	FailureInvalidParams FailureKind = "invalid_params"
	FailureCancelled     FailureKind = "cancelled"
	FailureInternal      FailureKind = "internal"
)

// Failure is a typed call failure. It travels as an error between layers and
// as a structured payload inside tool_response events.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Retryable reports whether a failure kind may succeed on a later attempt.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureRateLimited, FailureUnavailable, FailureTimeout:
		return true
	}
	return false
}

// IsRetryable classifies an arbitrary error for the retrier: only typed
// failures with a retryable kind qualify.
func IsRetryable(err error) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind.Retryable()
	}
	return false
}

// AsFailure extracts the typed failure from err, or wraps err as an internal
// failure so callers always have a structured form to record.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: FailureInternal, Message: err.Error()}
}
