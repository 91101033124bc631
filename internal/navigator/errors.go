package navigator

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies a navigator failure.
type Kind string

const (
	KindLookupFailure      Kind = "LOOKUP_FAILURE"
	KindURLParseFailure    Kind = "URL_PARSE_FAILURE"
	KindInvariantViolation Kind = "INVARIANT_VIOLATION"
	KindStaleCommit        Kind = "STALE_COMMIT"
	KindTooFewSites        Kind = "TOO_FEW_SITES"
	KindCapacityExceeded   Kind = "CAPACITY_EXCEEDED"
)

// Diagnostic is a non-fatal report returned alongside a partial result.
// Key names the offending entity (a group name, an id, a URL).
type Diagnostic struct {
	Kind   Kind   `json:"kind"`
	Key    string `json:"key"`
	Detail string `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Key)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Key, d.Detail)
}

// Error is returned by single-target operations that refuse to act.
type Error struct {
	Kind    Kind
	Key     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Diagnostic converts the error into its report form.
func (e *Error) Diagnostic() Diagnostic {
	return Diagnostic{Kind: e.Kind, Key: e.Key, Detail: e.Message}
}

func newError(kind Kind, key string, format string, args ...any) *Error {
	return &Error{Kind: kind, Key: key, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the kind from err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
