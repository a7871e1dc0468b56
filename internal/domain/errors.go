package domain

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound is reported by storage backends when a requested object
// does not exist.
var ErrObjectNotFound = errors.New("object not found")

// BadRequestError is a client-correctable input problem: missing file, wrong
// type, oversize payload, missing fabric selection. Detected before any
// external call is made.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string { return e.Msg }

// BadRequest builds a BadRequestError with the given user-facing message.
func BadRequest(msg string) error { return &BadRequestError{Msg: msg} }

// InvalidImageError means pixel geometry could not be read from the supplied
// bytes.
type InvalidImageError struct {
	Err error
}

func (e *InvalidImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not read image dimensions: %v", e.Err)
	}
	return "could not read image dimensions"
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// GenerationFailedError means the external model returned no usable image or
// the call itself failed.
type GenerationFailedError struct {
	Msg string
	Err error
}

func (e *GenerationFailedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "generation failed"
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// StorageWriteError carries the backend identity and destination key of a
// failed persistence call. Fatal for the current request; never retried.
type StorageWriteError struct {
	Backend string
	Key     string
	Err     error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write failed (%s %s): %v", e.Backend, e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// StorageReadError is reported when a stored object cannot be read back,
// including the not-found case surfaced by the blob proxy.
type StorageReadError struct {
	Backend string
	Key     string
	Err     error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("storage read failed (%s %s): %v", e.Backend, e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// NotFound reports whether the read failure was an absent object.
func (e *StorageReadError) NotFound() bool { return errors.Is(e.Err, ErrObjectNotFound) }

// UpstreamFetchError means a caller-supplied image URL could not be fetched.
type UpstreamFetchError struct {
	URL string
	Err error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// InternalError wraps anything unanticipated. The original message is kept
// verbatim so operators can diagnose from the response payload.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }
