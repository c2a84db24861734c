package bgv

import (
	"errors"
	"fmt"
)

// Validation failures of a single parameter. They are wrapped by
// *ParameterError and can be tested with errors.Is.
var (
	ErrZeroValue      = errors.New("value must be non-zero")
	ErrNegative       = errors.New("value must be positive")
	ErrOutOfRange     = errors.New("value out of range")
	ErrParse          = errors.New("malformed input")
	ErrNotPrime       = errors.New("value must be prime")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrUnknownMode    = errors.New("unknown mode")
	ErrConflict       = errors.New("conflicting parameters")
	ErrMissing        = errors.New("missing value")

	// ErrConversion marks a value read back from the library that lies
	// outside of the domain of its parameter.
	ErrConversion = errors.New("library value outside of parameter domain")

	// ErrClosed is wrapped by the *ConstructionError returned when a
	// closed Context is used.
	ErrClosed = errors.New("context is closed")
)

// ParameterError is the validation error of a single parameter.
type ParameterError struct {
	Field Field
	Value string
	Err   error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("bgv: invalid %s=%q: %s", e.Field, e.Value, e.Err)
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// ConstructionKind classifies a ConstructionError.
type ConstructionKind uint8

const (
	// Native is an opaque failure reported by the library.
	Native = ConstructionKind(iota)
	// NullHandle means the library returned a null handle without error.
	// It is always a defect of this package or of the library.
	NullHandle
	// InvalidParameter means the library rejected the value of a parameter.
	InvalidParameter
	// OutOfOrder means a parameter was set outside of its construction phase.
	OutOfOrder
	// Duplicate means a parameter was set twice on the same builder.
	Duplicate
	// MissingField means a required parameter was never set.
	MissingField
	// UseAfterMove means a builder was used after being consumed.
	UseAfterMove
	// Closed means a context was used after Close.
	Closed
)

func (k ConstructionKind) String() string {
	switch k {
	case Native:
		return "native failure"
	case NullHandle:
		return "null handle"
	case InvalidParameter:
		return "invalid parameter"
	case OutOfOrder:
		return "out of order"
	case Duplicate:
		return "duplicate parameter"
	case MissingField:
		return "missing parameter"
	case UseAfterMove:
		return "use after move"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("ConstructionKind(%d)", uint8(k))
	}
}

// ConstructionError is returned by the Builder and the Context when the
// interaction with the library fails. Field is FieldUnknown when the
// failure is not attributable to a single parameter.
type ConstructionError struct {
	Kind  ConstructionKind
	Field Field
	Msg   string
	Err   error
}

func (e *ConstructionError) Error() string {

	msg := "bgv: " + e.Kind.String()

	if e.Field != FieldUnknown {
		msg += " (" + e.Field.String() + ")"
	}

	if e.Msg != "" {
		msg += ": " + e.Msg
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *ConstructionError of the same Kind.
func (e *ConstructionError) Is(target error) bool {
	t, ok := target.(*ConstructionError)
	return ok && t.Kind == e.Kind && t.Field == FieldUnknown && t.Msg == "" && t.Err == nil
}

// AsParameterError returns the *ParameterError wrapped by err, if any.
func AsParameterError(err error) (*ParameterError, bool) {
	var perr *ParameterError
	ok := errors.As(err, &perr)
	return perr, ok
}

// AsConstructionError returns the *ConstructionError wrapped by err, if any.
func AsConstructionError(err error) (*ConstructionError, bool) {
	var cerr *ConstructionError
	ok := errors.As(err, &cerr)
	return cerr, ok
}

func newParameterError(f Field, value any, err error) *ParameterError {
	return &ParameterError{Field: f, Value: fmt.Sprint(value), Err: err}
}
