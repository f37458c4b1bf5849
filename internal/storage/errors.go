package storage

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced group, day or user does not
// exist at operation time, including when it was deleted concurrently.
// Callers should refresh their view rather than retry.
type NotFoundError struct {
	Resource string // "group", "day", "appointment", "user"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UnavailableError wraps a failure of the underlying store itself
// (network, quota, permission denial). Idempotent operations are safe to
// retry; the non-atomic appointment append is not without a re-read.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
