package apperrors

import "errors"

// Sentinel errors for the payment verification workflow. Callers match with
// errors.Is; the HTTP layer maps each class to a distinct status code so the
// dashboard can tell a stale view (refresh the list) from a retryable failure.
var (
	// ErrNotFound - submission, lease, record or user id did not resolve
	ErrNotFound = errors.New("not found")

	// ErrInvalidState - transition attempted on a submission that already
	// left pending, or a batch job that another worker holds the lock for
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation - missing admin notes, malformed amount, bad enum value
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized - missing/expired bearer token or suspended account
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream - a collaborator (SMS gateway, object storage) failed
	ErrUpstream = errors.New("upstream failure")
)

// NotFound wraps ErrNotFound with a message
func NotFound(msg string) error {
	return wrap(ErrNotFound, msg)
}

// InvalidState wraps ErrInvalidState with a message
func InvalidState(msg string) error {
	return wrap(ErrInvalidState, msg)
}

// Validation wraps ErrValidation with a message
func Validation(msg string) error {
	return wrap(ErrValidation, msg)
}

// Upstream wraps ErrUpstream with a message
func Upstream(msg string) error {
	return wrap(ErrUpstream, msg)
}

type wrapped struct {
	sentinel error
	msg      string
}

func wrap(sentinel error, msg string) error {
	return &wrapped{sentinel: sentinel, msg: msg}
}

func (w *wrapped) Error() string {
	return w.msg
}

func (w *wrapped) Unwrap() error {
	return w.sentinel
}
