// Package taskerr defines the closed error taxonomy shared by every layer of
// the dependency-graph store. Callers compare kinds with errors.Is against
// the sentinel values below rather than inspecting message text.
package taskerr

import "fmt"

// Kind identifies the category of a failure. The set is closed: new kinds
// are not expected to be added by callers outside this package.
type Kind int

const (
	_ Kind = iota
	// OpenFailed means the database file could not be opened.
	OpenFailed
	// PrepareStatementFailed means the SQL text was rejected at prepare time.
	PrepareStatementFailed
	// BindFailed means a parameter bind call returned non-OK.
	BindFailed
	// StepFailed means statement execution failed, often a constraint violation.
	StepFailed
	// ExecFailed means an auxiliary exec (transaction control, pragma) failed.
	ExecFailed
	// InvalidData means a referenced row is missing, in the wrong state for
	// the requested operation, or a delete was blocked by dependents.
	InvalidData
	// InvalidInput means the caller supplied a no-op update or other garbage.
	InvalidInput
	// InvalidKebabCase means a slug failed the kebab-case grammar.
	InvalidKebabCase
	// EmptyID means a slug or identifier was empty.
	EmptyID
	// InvalidTaskID means an external task identifier was malformed.
	InvalidTaskID
	// CycleDetected means the proposed edge would create a cycle.
	CycleDetected
	// DatabaseClosed means the connection was already torn down.
	DatabaseClosed
	// NotAWorkspace means workspace discovery could not find a store root.
	NotAWorkspace
	// AlreadyInWorkspace means workspace init was run where one already exists.
	AlreadyInWorkspace
)

func (k Kind) String() string {
	switch k {
	case OpenFailed:
		return "OpenFailed"
	case PrepareStatementFailed:
		return "PrepareStatementFailed"
	case BindFailed:
		return "BindFailed"
	case StepFailed:
		return "StepFailed"
	case ExecFailed:
		return "ExecFailed"
	case InvalidData:
		return "InvalidData"
	case InvalidInput:
		return "InvalidInput"
	case InvalidKebabCase:
		return "InvalidKebabCase"
	case EmptyID:
		return "EmptyID"
	case InvalidTaskID:
		return "InvalidTaskID"
	case CycleDetected:
		return "CycleDetected"
	case DatabaseClosed:
		return "DatabaseClosed"
	case NotAWorkspace:
		return "NotAWorkspace"
	case AlreadyInWorkspace:
		return "AlreadyInWorkspace"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a taxonomy Kind and a message
// describing the operation that failed.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, taskerr.New(Kind, "", nil)) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Newf constructs an *Error with a formatted message.
func Newf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinel returns a bare error of the given kind suitable for use as the
// comparison target in errors.Is(err, taskerr.Sentinel(taskerr.CycleDetected)).
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind from err, if err is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return 0, false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
