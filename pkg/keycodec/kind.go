package keycodec

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the closed set of field kinds a key may contain.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint128
	KindArray
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt8:    "i8",
	KindInt16:   "i16",
	KindInt32:   "i32",
	KindInt64:   "i64",
	KindInt128:  "i128",
	KindUint8:   "u8",
	KindUint16:  "u16",
	KindUint32:  "u32",
	KindUint64:  "u64",
	KindUint128: "u128",
	KindArray:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// FieldType is a field kind plus, for arrays, the array length.
// The width of a field is determined entirely by its type.
type FieldType struct {
	Kind Kind
	Len  int // array length; zero for integer kinds
}

// Integer field types.
var (
	I8   = FieldType{Kind: KindInt8}
	I16  = FieldType{Kind: KindInt16}
	I32  = FieldType{Kind: KindInt32}
	I64  = FieldType{Kind: KindInt64}
	I128 = FieldType{Kind: KindInt128}
	U8   = FieldType{Kind: KindUint8}
	U16  = FieldType{Kind: KindUint16}
	U32  = FieldType{Kind: KindUint32}
	U64  = FieldType{Kind: KindUint64}
	U128 = FieldType{Kind: KindUint128}
)

// Array returns the type of a fixed-length byte array field.
func Array(n int) FieldType {
	return FieldType{Kind: KindArray, Len: n}
}

// Size returns the width of the field in bytes.
func (t FieldType) Size() int {
	switch t.Kind {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32:
		return 4
	case KindInt64, KindUint64:
		return 8
	case KindInt128, KindUint128:
		return 16
	case KindArray:
		return t.Len
	}
	return 0
}

// Signed reports whether the type is a two's complement integer.
func (t FieldType) Signed() bool {
	return t.Kind >= KindInt8 && t.Kind <= KindInt128
}

// Unsigned reports whether the type is an unsigned integer.
func (t FieldType) Unsigned() bool {
	return t.Kind >= KindUint8 && t.Kind <= KindUint128
}

func (t FieldType) String() string {
	if t.Kind == KindArray {
		return fmt.Sprintf("[u8; %d]", t.Len)
	}
	return t.Kind.String()
}

// Validate rejects kinds outside the closed set and empty arrays.
func (t FieldType) Validate() error {
	switch {
	case t.Kind == KindArray && t.Len <= 0:
		return fmt.Errorf("%w: %s", ErrZeroLengthArray, t)
	case t.Kind == KindArray:
		return nil
	case t.Kind == KindInvalid || t.Kind > KindArray:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, t.Kind)
	case t.Len != 0:
		return fmt.Errorf("%w: %s with length %d", ErrUnsupportedKind, t.Kind, t.Len)
	}
	return nil
}

// ParseFieldType parses the textual form of a field type as used in schema
// files: "i8".."i128", "u8".."u128", "[u8; N]" or "bytes:N".
func ParseFieldType(s string) (FieldType, error) {
	s = strings.TrimSpace(s)
	for k := KindInt8; k <= KindUint128; k++ {
		if s == kindNames[k] {
			return FieldType{Kind: k}, nil
		}
	}

	var n string
	switch {
	case strings.HasPrefix(s, "bytes:"):
		n = strings.TrimPrefix(s, "bytes:")
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		elem, length, ok := strings.Cut(s[1:len(s)-1], ";")
		if !ok || strings.TrimSpace(elem) != "u8" {
			return FieldType{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
		}
		n = length
	default:
		return FieldType{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}

	length, err := strconv.Atoi(strings.TrimSpace(n))
	if err != nil || length < 0 {
		return FieldType{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	t := Array(length)
	if err := t.Validate(); err != nil {
		return FieldType{}, err
	}
	return t, nil
}
