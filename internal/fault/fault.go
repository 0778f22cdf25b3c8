// Package fault defines the closed error taxonomy shared by the data core.
//
// Every error that crosses a component boundary carries exactly one Kind,
// so callers can switch on the kind instead of string-matching messages.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the closed set of failure modes.
type Kind int

const (
	// KindUnknown is the zero value; errors without a kind map here.
	KindUnknown Kind = iota

	// KindNotFound means an identifier could not be resolved to coordinates,
	// or no station data exists for the given coordinates.
	KindNotFound

	// KindNetwork is a transport-level failure: DNS, connection refused,
	// or a non-2xx upstream response.
	KindNetwork

	// KindPermission means a device capability was denied by the user.
	KindPermission

	// KindUnavailable means a capability exists but is currently disabled.
	KindUnavailable

	// KindTimeout means an operation exceeded its allotted wait.
	// Distinct from KindNetwork because a retry may succeed.
	KindTimeout

	// KindQuota means the assistant collaborator reported a usage limit.
	KindQuota
)

// String returns the kind's stable name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindPermission:
		return "permission"
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	case KindQuota:
		return "quota"
	default:
		return "unknown"
	}
}

// Error is a classified error with an operation name for diagnostics.
type Error struct {
	// Kind is the failure classification.
	Kind Kind

	// Op names the failing operation, e.g. "aqicn.fetch_by_coordinates".
	Op string

	// Msg is a human-readable description.
	Msg string

	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a message.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap classifies an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the kind from an error chain.
// Errors without a fault.Error in the chain report KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
