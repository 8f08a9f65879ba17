package domain

import (
	"errors"
	"fmt"
)

// FailoverBehavior selects how the router picks a node for a given
// operation when the leader is unknown or unreachable.
type FailoverBehavior string

const (
	// ReadFromAllWriteToLeader stripes GETs across NodeList, writes go to
	// the leader; a nil leader is fatal.
	ReadFromAllWriteToLeader FailoverBehavior = "ReadFromAllWriteToLeader"

	// ReadFromAllWriteToLeaderWithFailovers is like ReadFromAllWriteToLeader
	// but tolerates a nil leader by walking the failover list.
	ReadFromAllWriteToLeaderWithFailovers FailoverBehavior = "ReadFromAllWriteToLeaderWithFailovers"

	// ReadFromLeaderWriteToLeaderWithFailovers always targets the leader
	// but tolerates a nil leader by walking the failover list.
	ReadFromLeaderWriteToLeaderWithFailovers FailoverBehavior = "ReadFromLeaderWriteToLeaderWithFailovers"

	// FailoverBehaviorDefault is the strict policy: always the leader, nil
	// leader is fatal.
	FailoverBehaviorDefault FailoverBehavior = ""
)

// Tolerant reports whether the behavior tolerates dispatch with no known
// leader (entering the failover walk instead of failing fast).
func (b FailoverBehavior) Tolerant() bool {
	return b == ReadFromAllWriteToLeaderWithFailovers || b == ReadFromLeaderWriteToLeaderWithFailovers
}

// ErrorKind enumerates the error kinds the executor surfaces to callers
// (spec §7).
type ErrorKind string

const (
	// KindNoStableLeader: strict policy, leader await timed out.
	KindNoStableLeader ErrorKind = "no_stable_leader"

	// KindClusterUnreachable: retries exhausted, or failover walk exhausted.
	KindClusterUnreachable ErrorKind = "cluster_unreachable"

	// KindBadRedirect: 302 without a valid leader-redirect header.
	KindBadRedirect ErrorKind = "bad_redirect"

	// KindCancelled: the caller's cancellation token fired.
	KindCancelled ErrorKind = "cancelled"

	// KindOperationError: passthrough of a non-retryable operation error.
	KindOperationError ErrorKind = "operation_error"
)

// ClusterError is the error type the executor raises for all classified
// failure conditions in spec §7. Non-classified operation failures are
// wrapped with KindOperationError so callers can still errors.Is/As to
// the original cause via Unwrap.
type ClusterError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// NewClusterError builds a ClusterError of the given kind.
func NewClusterError(kind ErrorKind, message string) *ClusterError {
	return &ClusterError{Kind: kind, Message: message}
}

// Error implements the error interface.
func (e *ClusterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap supports errors.Is/As against the underlying cause.
func (e *ClusterError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is by error kind rather than pointer identity.
func (e *ClusterError) Is(target error) bool {
	t, ok := target.(*ClusterError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithCause returns a copy of e wrapping cause.
func (e *ClusterError) WithCause(cause error) *ClusterError {
	return &ClusterError{Kind: e.Kind, Message: e.Message, Cause: cause}
}

// IsKind reports whether err is, or wraps, a *ClusterError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *ClusterError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}
