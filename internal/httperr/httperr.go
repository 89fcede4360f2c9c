// Package httperr defines the error taxonomy of §7: a small set of request
// processing failures, each carrying the HTTP status it maps to.
package httperr

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind is one of the error taxonomy entries from §7.
type Kind int

const (
	KindNotFound Kind = iota
	KindPermissionDenied
	KindBadMethod
	KindBadPrecondition
	KindBadRange
	KindOther
)

// Status returns the HTTP status code this kind maps to.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return 404
	case KindPermissionDenied:
		return 403
	case KindBadMethod:
		return 405
	case KindBadPrecondition:
		return 412
	case KindBadRange:
		return 416
	default:
		return 500
	}
}

// Error wraps an underlying error with the Kind that determines its HTTP
// status, plus optional response metadata (e.g. Allow, Content-Range).
type Error struct {
	Kind    Kind
	Err     error
	Headers map[string]string
}

func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithHeader attaches one response header to be sent alongside the error
// status (e.g. "Allow: GET, HEAD" for BadMethod, "Content-Range: bytes
// */100" for BadRange).
func (e *Error) WithHeader(key, value string) *Error {
	if e.Headers == nil {
		e.Headers = make(map[string]string)
	}
	e.Headers[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("httperr: status %d", e.Kind.Status())
	}
	return fmt.Sprintf("httperr: status %d: %v", e.Kind.Status(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf maps any error to a status code per §4.9: a classified *Error
// contributes its Kind's status; anything else is 500.
func StatusOf(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind.Status()
	}
	return 500
}

// HeadersOf returns the response headers an *Error wants attached, or nil.
func HeadersOf(err error) map[string]string {
	var he *Error
	if errors.As(err, &he) {
		return he.Headers
	}
	return nil
}

// FromStatErr classifies a filesystem stat/open error into the taxonomy's
// NotFound/PermissionDenied/Other kinds.
func FromStatErr(err error) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return New(KindNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return New(KindPermissionDenied, err)
	default:
		return New(KindOther, err)
	}
}
