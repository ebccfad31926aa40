package layout

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrorKind classifies a decode failure.
type ErrorKind string

const (
	// KindLengthMismatch means the buffer length fails the schema's length policy.
	KindLengthMismatch ErrorKind = "LENGTH_MISMATCH"

	// KindUnknownShape means no schema matches the owner and length.
	KindUnknownShape ErrorKind = "UNKNOWN_SHAPE"

	// KindTruncatedField means a field read would run past the end of the buffer.
	KindTruncatedField ErrorKind = "TRUNCATED_FIELD"
)

// DecodeError is returned by every decoder and by the dispatcher.
// Which fields are meaningful depends on Kind.
type DecodeError struct {
	// Kind is the failure class.
	Kind ErrorKind

	// Schema is the schema being decoded, SchemaUnknown for UnknownShape.
	Schema SchemaID

	// Expected is the required length for LengthMismatch.
	Expected int

	// Actual is the observed buffer length.
	Actual int

	// AtLeast is set when Expected is a minimum.
	AtLeast bool

	// Offset is the cursor position of a TruncatedField read.
	Offset int

	// Width is the size of the field that could not be read.
	Width int

	// Owner is the owning program for UnknownShape.
	Owner solana.PublicKey

	// Details carries extra context, if any.
	Details string
}

// Pre-defined errors for errors.Is matching. They compare by Kind only.
var (
	ErrLengthMismatch = &DecodeError{Kind: KindLengthMismatch}
	ErrUnknownShape   = &DecodeError{Kind: KindUnknownShape}
	ErrTruncatedField = &DecodeError{Kind: KindTruncatedField}
)

// NewLengthMismatch creates a LengthMismatch error for a schema.
func NewLengthMismatch(schema SchemaID, policy LengthPolicy, actual int) *DecodeError {
	return &DecodeError{
		Kind:     KindLengthMismatch,
		Schema:   schema,
		Expected: policy.Size,
		Actual:   actual,
		AtLeast:  policy.Mode == ModeAtLeast,
	}
}

// NewUnknownShape creates an UnknownShape error.
func NewUnknownShape(owner solana.PublicKey, length int) *DecodeError {
	return &DecodeError{
		Kind:   KindUnknownShape,
		Owner:  owner,
		Actual: length,
	}
}

// NewTruncatedField creates a TruncatedField error.
func NewTruncatedField(schema SchemaID, offset, width, length int) *DecodeError {
	return &DecodeError{
		Kind:   KindTruncatedField,
		Schema: schema,
		Offset: offset,
		Width:  width,
		Actual: length,
	}
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var msg string
	switch e.Kind {
	case KindLengthMismatch:
		bound := "expected"
		if e.AtLeast {
			bound = "expected at least"
		}
		msg = fmt.Sprintf("%s: %s: %s %d bytes, got %d", e.Kind, e.Schema, bound, e.Expected, e.Actual)
	case KindUnknownShape:
		msg = fmt.Sprintf("%s: no schema for owner %s with %d bytes", e.Kind, e.Owner, e.Actual)
	case KindTruncatedField:
		msg = fmt.Sprintf("%s: %s: %d-byte field at offset %d exceeds %d-byte buffer",
			e.Kind, e.Schema, e.Width, e.Offset, e.Actual)
	default:
		msg = string(e.Kind)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Is reports whether target is a DecodeError of the same kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetails sets Details and returns the error.
func (e *DecodeError) WithDetails(format string, args ...any) *DecodeError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}
