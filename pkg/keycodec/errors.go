package keycodec

import (
	"errors"
	"fmt"
)

// Definition errors. These are returned while a descriptor is being built and
// never by encode or decode calls on a built descriptor.
var (
	ErrUnsupportedKind     = errors.New("keycodec: unsupported field kind")
	ErrZeroLengthArray     = errors.New("keycodec: array field must have a non-zero length")
	ErrNoFields            = errors.New("keycodec: key must declare at least one field")
	ErrDuplicateField      = errors.New("keycodec: duplicate field name")
	ErrInvalidFieldName    = errors.New("keycodec: field name must not be empty")
	ErrConflictingOverride = errors.New("keycodec: attribute set more than once for field")
	ErrInvalidBounds       = errors.New("keycodec: field minimum is greater than its maximum")
	ErrInvalidLiteral      = errors.New("keycodec: invalid literal for field type")
)

// Conversion errors.
var (
	ErrTypeMismatch  = errors.New("keycodec: value type mismatch")
	ErrSizeMismatch  = errors.New("keycodec: array size mismatch")
	ErrUnknownField  = errors.New("keycodec: unknown field")
	ErrFieldCount    = errors.New("keycodec: wrong number of field values")
	ErrInvalidFormat = errors.New("keycodec: unknown raw format")
)

// ConversionError reports an attempt to read or store a value as a type other
// than the one it carries.
type ConversionError struct {
	Want FieldType
	Got  FieldType
}

func (e *ConversionError) Error() string {
	if e.Want.Kind == KindArray && e.Got.Kind == KindArray {
		return fmt.Sprintf("keycodec: cannot convert %d-byte array to %d-byte array", e.Got.Len, e.Want.Len)
	}
	return fmt.Sprintf("keycodec: cannot convert %s to %s", e.Got, e.Want)
}

// Unwrap lets errors.Is match ErrSizeMismatch or ErrTypeMismatch.
func (e *ConversionError) Unwrap() error {
	if e.Want.Kind == KindArray && e.Got.Kind == KindArray {
		return ErrSizeMismatch
	}
	return ErrTypeMismatch
}

// FieldTypeError is the panic value of a typed getter or setter called on a
// field of another type.
type FieldTypeError struct {
	Method string
	Field  string
	Type   FieldType
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("keycodec: %s called on field %q of type %s", e.Method, e.Field, e.Type)
}
