// Package errs defines the failure kinds callers are expected to tell apart.
//
// Each kind is a value type with an Is method so that errors.Is matches any
// instance, plus a zero-value sentinel for convenience. Normalization never
// fails and so has no type here.
package errs

import "fmt"

// SyncError reports that a live query stopped delivering. The last good
// snapshot is still valid and nothing retries on its own.
type SyncError struct {
	Scope string
	Err   error
}

func (e SyncError) Error() string {
	switch {
	case e.Scope == "" && e.Err == nil:
		return "sync failed"
	case e.Scope == "":
		return fmt.Sprintf("sync failed: %v", e.Err)
	case e.Err == nil:
		return fmt.Sprintf("sync %s failed", e.Scope)
	default:
		return fmt.Sprintf("sync %s failed: %v", e.Scope, e.Err)
	}
}

func (e SyncError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on SyncError.
func (e SyncError) Is(target error) bool {
	switch target.(type) {
	case SyncError, *SyncError:
		return true
	}
	return false
}

// RejectReason says why a send never reached the store.
type RejectReason string

const (
	RejectEmpty           RejectReason = "empty"
	RejectUnauthenticated RejectReason = "unauthenticated"
)

// SendRejected is returned before any network call is made.
type SendRejected struct {
	Reason RejectReason
}

func (e SendRejected) Error() string {
	switch e.Reason {
	case RejectEmpty:
		return "send rejected: message is empty"
	case RejectUnauthenticated:
		return "send rejected: sign in to send messages"
	case "":
		return "send rejected"
	default:
		return fmt.Sprintf("send rejected: %s", e.Reason)
	}
}

// Is matches any SendRejected when target has no reason, otherwise only the
// same reason.
func (e SendRejected) Is(target error) bool {
	var want RejectReason
	switch t := target.(type) {
	case SendRejected:
		want = t.Reason
	case *SendRejected:
		want = t.Reason
	default:
		return false
	}
	return want == "" || want == e.Reason
}

// WriteFailure wraps a store write that was attempted and failed. Local state
// is unchanged and the same operation can be retried.
type WriteFailure struct {
	Op  string
	Err error
}

func (e WriteFailure) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("write failed: %v", e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e WriteFailure) Unwrap() error { return e.Err }

// Is enables errors.Is matching on WriteFailure.
func (e WriteFailure) Is(target error) bool {
	switch target.(type) {
	case WriteFailure, *WriteFailure:
		return true
	}
	return false
}

// NotFoundError represents a missing document.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	switch target.(type) {
	case NotFoundError, *NotFoundError:
		return true
	}
	return false
}

var (
	ErrSync            = SyncError{}
	ErrSendRejected    = SendRejected{}
	ErrEmptyMessage    = SendRejected{Reason: RejectEmpty}
	ErrUnauthenticated = SendRejected{Reason: RejectUnauthenticated}
	ErrWrite           = WriteFailure{}
	ErrNotFound        = NotFoundError{}
)
