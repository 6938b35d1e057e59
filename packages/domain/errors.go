package domain

import (
	"errors"
	"fmt"
)

type FetchErrorKind string

const (
	FetchNetwork   FetchErrorKind = "network"
	FetchTimeout   FetchErrorKind = "timeout"
	FetchBadStatus FetchErrorKind = "bad_status"
)

// FetchError is a typed page-fetch failure. It degrades the owning
// extractor; the run itself fails only when no viewport could be fetched.
type FetchError struct {
	Kind   FetchErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FetchBadStatus {
		return fmt.Sprintf("fetch %s: bad status code: %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrProviderUnavailable is the uniform outcome of an optional third-party
// provider that is missing, misconfigured, or failing. Never fatal.
var ErrProviderUnavailable = errors.New("provider unavailable")

// AuditError is the only error the engine returns to callers: no usable
// snapshot could be obtained for any required viewport.
type AuditError struct {
	URL string
	Err error
}

func (e *AuditError) Error() string { return fmt.Sprintf("audit failed for %s: %v", e.URL, e.Err) }
func (e *AuditError) Unwrap() error { return e.Err }
