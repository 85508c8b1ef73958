package keycodec

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"lukechampine.com/uint128"
)

// Value is a single field value together with its type. It holds the value in
// encoded form: big-endian, with the sign bit flipped for signed kinds. The
// encoded bytes of two values of the same type compare like the values do.
type Value struct {
	typ FieldType
	raw []byte
}

// Int8Value returns the value of an i8 field.
func Int8Value(v int8) Value {
	return Value{typ: I8, raw: []byte{uint8(v) ^ 0x80}}
}

// Int16Value returns the value of an i16 field.
func Int16Value(v int16) Value {
	raw := make([]byte, 2)
	binary.BigEndian.PutUint16(raw, uint16(v)^0x8000)
	return Value{typ: I16, raw: raw}
}

// Int32Value returns the value of an i32 field.
func Int32Value(v int32) Value {
	raw := make([]byte, 4)
	binary.BigEndian.PutUint32(raw, uint32(v)^0x80000000)
	return Value{typ: I32, raw: raw}
}

// Int64Value returns the value of an i64 field.
func Int64Value(v int64) Value {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(v)^(1<<63))
	return Value{typ: I64, raw: raw}
}

// Int128Value returns the value of an i128 field.
func Int128Value(v Int128) Value {
	raw := make([]byte, 16)
	v.flip().PutBytesBE(raw)
	return Value{typ: I128, raw: raw}
}

// Uint8Value returns the value of a u8 field.
func Uint8Value(v uint8) Value {
	return Value{typ: U8, raw: []byte{v}}
}

// Uint16Value returns the value of a u16 field.
func Uint16Value(v uint16) Value {
	raw := make([]byte, 2)
	binary.BigEndian.PutUint16(raw, v)
	return Value{typ: U16, raw: raw}
}

// Uint32Value returns the value of a u32 field.
func Uint32Value(v uint32) Value {
	raw := make([]byte, 4)
	binary.BigEndian.PutUint32(raw, v)
	return Value{typ: U32, raw: raw}
}

// Uint64Value returns the value of a u64 field.
func Uint64Value(v uint64) Value {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, v)
	return Value{typ: U64, raw: raw}
}

// Uint128Value returns the value of a u128 field.
func Uint128Value(v uint128.Uint128) Value {
	raw := make([]byte, 16)
	v.PutBytesBE(raw)
	return Value{typ: U128, raw: raw}
}

// ArrayValue returns the value of a len(b)-byte array field. b is copied.
func ArrayValue(b []byte) Value {
	return Value{typ: Array(len(b)), raw: bytes.Clone(b)}
}

// DecodeValue interprets raw as the encoded bytes of a value of type t.
func DecodeValue(t FieldType, raw []byte) (Value, error) {
	if err := t.Validate(); err != nil {
		return Value{}, err
	}
	if len(raw) != t.Size() {
		return Value{}, fmt.Errorf("%w: %d bytes for %s", ErrSizeMismatch, len(raw), t)
	}
	return Value{typ: t, raw: bytes.Clone(raw)}, nil
}

// ValueOf wraps a Go value of a supported type. int and uint are treated as
// i64 and u64.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case Value:
		return v, nil
	case int8:
		return Int8Value(v), nil
	case int16:
		return Int16Value(v), nil
	case int32:
		return Int32Value(v), nil
	case int64:
		return Int64Value(v), nil
	case int:
		return Int64Value(int64(v)), nil
	case Int128:
		return Int128Value(v), nil
	case uint8:
		return Uint8Value(v), nil
	case uint16:
		return Uint16Value(v), nil
	case uint32:
		return Uint32Value(v), nil
	case uint64:
		return Uint64Value(v), nil
	case uint:
		return Uint64Value(uint64(v)), nil
	case uint128.Uint128:
		return Uint128Value(v), nil
	case []byte:
		return ArrayValue(v), nil
	}
	return Value{}, fmt.Errorf("%w: Go type %T", ErrUnsupportedKind, x)
}

// ZeroValue returns the type default: zero for integers, all zero bytes for arrays.
func ZeroValue(t FieldType) Value {
	raw := make([]byte, t.Size())
	if t.Signed() {
		raw[0] = 0x80
	}
	return Value{typ: t, raw: raw}
}

// MinValue returns the smallest value of t. Its encoding is all zero bytes.
func MinValue(t FieldType) Value {
	return Value{typ: t, raw: make([]byte, t.Size())}
}

// MaxValue returns the largest value of t. Its encoding is all 0xFF bytes.
func MaxValue(t FieldType) Value {
	return Value{typ: t, raw: bytes.Repeat([]byte{0xFF}, t.Size())}
}

// Type returns the field type of v.
func (v Value) Type() FieldType { return v.typ }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.typ.Kind != KindInvalid }

// Encoded returns a copy of the encoded bytes of v.
func (v Value) Encoded() []byte { return bytes.Clone(v.raw) }

// Compare orders two values of the same type. Values of different types are
// ordered by their encodings only.
func (v Value) Compare(w Value) int {
	return bytes.Compare(v.raw, w.raw)
}

// Equal reports whether v and w have the same type and value.
func (v Value) Equal(w Value) bool {
	return v.typ == w.typ && bytes.Equal(v.raw, w.raw)
}

func (v Value) expect(t FieldType) error {
	if v.typ != t {
		return &ConversionError{Want: t, Got: v.typ}
	}
	return nil
}

// Int8 returns the value of an i8.
func (v Value) Int8() (int8, error) {
	if err := v.expect(I8); err != nil {
		return 0, err
	}
	return int8(v.raw[0] ^ 0x80), nil
}

// Int16 returns the value of an i16.
func (v Value) Int16() (int16, error) {
	if err := v.expect(I16); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(v.raw) ^ 0x8000), nil
}

// Int32 returns the value of an i32.
func (v Value) Int32() (int32, error) {
	if err := v.expect(I32); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(v.raw) ^ 0x80000000), nil
}

// Int64 returns the value of an i64.
func (v Value) Int64() (int64, error) {
	if err := v.expect(I64); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(v.raw) ^ (1 << 63)), nil
}

// Int128 returns the value of an i128.
func (v Value) Int128() (Int128, error) {
	if err := v.expect(I128); err != nil {
		return Int128{}, err
	}
	return int128FromFlipped(uint128.FromBytesBE(v.raw)), nil
}

// Uint8 returns the value of a u8.
func (v Value) Uint8() (uint8, error) {
	if err := v.expect(U8); err != nil {
		return 0, err
	}
	return v.raw[0], nil
}

// Uint16 returns the value of a u16.
func (v Value) Uint16() (uint16, error) {
	if err := v.expect(U16); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(v.raw), nil
}

// Uint32 returns the value of a u32.
func (v Value) Uint32() (uint32, error) {
	if err := v.expect(U32); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v.raw), nil
}

// Uint64 returns the value of a u64.
func (v Value) Uint64() (uint64, error) {
	if err := v.expect(U64); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v.raw), nil
}

// Uint128 returns the value of a u128.
func (v Value) Uint128() (uint128.Uint128, error) {
	if err := v.expect(U128); err != nil {
		return uint128.Zero, err
	}
	return uint128.FromBytesBE(v.raw), nil
}

// Array returns a copy of an n-byte array value.
func (v Value) Array(n int) ([]byte, error) {
	if err := v.expect(Array(n)); err != nil {
		return nil, err
	}
	return bytes.Clone(v.raw), nil
}

// Big returns an integer value as a big.Int. It returns nil for arrays.
func (v Value) Big() *big.Int {
	switch {
	case v.typ.Unsigned():
		return new(big.Int).SetBytes(v.raw)
	case v.typ.Signed():
		u := new(big.Int).SetBytes(v.raw)
		half := new(big.Int).Lsh(big.NewInt(1), uint(8*len(v.raw)-1))
		return u.Sub(u, half)
	}
	return nil
}

// String renders v as a literal accepted by ParseLiteral: decimal for signed
// integers, zero-padded uppercase hexadecimal for unsigned integers and arrays.
func (v Value) String() string {
	switch {
	case !v.IsValid():
		return "<invalid>"
	case v.typ.Signed():
		return v.Big().String()
	}
	return "0x" + strings.ToUpper(hex.EncodeToString(v.raw))
}

// ParseLiteral parses s as a value of type t.
//
// Integers accept any base prefix understood by big.Int (0x, 0o, 0b),
// underscores between digits and an optional type suffix such as "_u32".
// Arrays accept a hexadecimal string of exactly the array width ("0xA5A5A5"),
// a repeat form ("[0xA5; 3]") or an element list ("[0x12, 0x34, 0x56]").
// Literals outside the range of t are rejected.
func ParseLiteral(t FieldType, s string) (Value, error) {
	if err := t.Validate(); err != nil {
		return Value{}, err
	}
	s = strings.TrimSpace(s)
	if t.Kind == KindArray {
		return parseArrayLiteral(t, s)
	}

	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		suffix := s[i+1:]
		if suffix == t.Kind.String() {
			s = s[:i]
		} else if _, err := ParseFieldType(suffix); err == nil {
			return Value{}, fmt.Errorf("%w: %q has suffix %s, field is %s", ErrInvalidLiteral, s, suffix, t)
		}
	}

	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidLiteral, s)
	}
	v, err := valueFromBig(t, b)
	if err != nil {
		return Value{}, fmt.Errorf("%w (literal %q)", err, s)
	}
	return v, nil
}

func valueFromBig(t FieldType, b *big.Int) (Value, error) {
	size := t.Size()
	var lo, hi *big.Int
	if t.Signed() {
		hi = new(big.Int).Lsh(big.NewInt(1), uint(8*size-1))
		lo = new(big.Int).Neg(hi)
		hi.Sub(hi, big.NewInt(1))
	} else {
		lo = new(big.Int)
		hi = new(big.Int).Lsh(big.NewInt(1), uint(8*size))
		hi.Sub(hi, big.NewInt(1))
	}
	if b.Cmp(lo) < 0 || b.Cmp(hi) > 0 {
		return Value{}, fmt.Errorf("%w: %s out of range for %s", ErrInvalidLiteral, b, t)
	}

	u := new(big.Int).Set(b)
	if t.Signed() {
		u.Sub(u, lo) // offset binary is the sign-flipped encoding
	}
	raw := make([]byte, size)
	u.FillBytes(raw)
	return Value{typ: t, raw: raw}, nil
}

func parseArrayLiteral(t FieldType, s string) (Value, error) {
	if !strings.HasPrefix(s, "[") {
		digits := strings.ReplaceAll(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), "_", "")
		raw, err := hex.DecodeString(digits)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not hexadecimal", ErrInvalidLiteral, s)
		}
		if len(raw) != t.Len {
			return Value{}, fmt.Errorf("%w: %q has %d bytes, field is %s", ErrInvalidLiteral, s, len(raw), t)
		}
		return Value{typ: t, raw: raw}, nil
	}
	if !strings.HasSuffix(s, "]") {
		return Value{}, fmt.Errorf("%w: unterminated array %q", ErrInvalidLiteral, s)
	}
	body := s[1 : len(s)-1]

	if elem, count, ok := strings.Cut(body, ";"); ok {
		b, err := parseByte(elem)
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n != t.Len {
			return Value{}, fmt.Errorf("%w: %q does not repeat %d times", ErrInvalidLiteral, s, t.Len)
		}
		return Value{typ: t, raw: bytes.Repeat([]byte{b}, n)}, nil
	}

	parts := strings.Split(body, ",")
	if len(parts) != t.Len {
		return Value{}, fmt.Errorf("%w: %q has %d elements, field is %s", ErrInvalidLiteral, s, len(parts), t)
	}
	raw := make([]byte, len(parts))
	for i, p := range parts {
		b, err := parseByte(p)
		if err != nil {
			return Value{}, err
		}
		raw[i] = b
	}
	return Value{typ: t, raw: raw}, nil
}

func parseByte(s string) (byte, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "_u8")
	b, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: byte %q", ErrInvalidLiteral, s)
	}
	return byte(b), nil
}
