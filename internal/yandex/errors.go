package yandex

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an API failure for the orchestrator's retry and
// abort decisions.
type ErrorKind int

const (
	// KindUnauthorized means the credential is invalid or expired.
	// Fatal: aborts the whole run.
	KindUnauthorized ErrorKind = iota

	// KindNotFound means the target does not exist or is private.
	// Fails that reference or track only.
	KindNotFound

	// KindRateLimited means the service asked us to back off.
	KindRateLimited

	// KindTransient covers network faults and 5xx responses,
	// eligible for retry.
	KindTransient

	// KindMalformed means the payload could not be decoded.
	// Fatal for that call only.
	KindMalformed
)

// String returns the kind label used in error messages.
func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindRateLimited:
		return "rate limited"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// APIError is a classified failure from the authenticated client.
type APIError struct {
	Kind   ErrorKind
	Status int
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from an error chain. The second return
// is false when the chain holds no APIError.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// ErrUnavailableEncoding is returned by the negotiator when the service
// does not offer the configured quality tier for a track. Per-track,
// never fatal to the run.
var ErrUnavailableEncoding = errors.New("requested encoding tier unavailable for track")

// ErrPlusRequired is returned at sign-in when the account lacks an
// active subscription.
var ErrPlusRequired = errors.New("active plus subscription required")

// ErrInvalidURL is returned by the classifier for inputs that match no
// recognized reference form.
var ErrInvalidURL = errors.New("unrecognized music URL")
