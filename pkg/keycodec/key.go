package keycodec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/uint128"
)

// Key is an encoded key: a buffer of exactly Descriptor.Width bytes. Byte-wise
// comparison of two keys of the same descriptor matches field-by-field
// comparison of their decoded values.
//
// The zero Key has no descriptor and must not be used.
type Key struct {
	desc *Descriptor
	buf  []byte
}

// Args supplies field values by name. Omitted fields take their defaults.
type Args map[string]Value

// New encodes one value per field, in declaration order.
func (d *Descriptor) New(values ...Value) (Key, error) {
	if len(values) != len(d.fields) {
		return Key{}, fmt.Errorf("%w: %s has %d fields, got %d", ErrFieldCount, d.name, len(d.fields), len(values))
	}
	k := Key{desc: d, buf: make([]byte, d.width)}
	for i, v := range values {
		if err := k.Set(i, v); err != nil {
			return Key{}, err
		}
	}
	return k, nil
}

// FromArgs starts from the default key and overwrites the supplied fields.
func (d *Descriptor) FromArgs(args Args) (Key, error) {
	k := d.Default()
	for name, v := range args {
		f, ok := d.Lookup(name)
		if !ok {
			return Key{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, d.name, name)
		}
		if err := k.Set(f.Index, v); err != nil {
			return Key{}, err
		}
	}
	return k, nil
}

// ParseArgs parses literals in the syntax of ParseLiteral into values of the
// named fields.
func (d *Descriptor) ParseArgs(fields map[string]string) (Args, error) {
	args := make(Args, len(fields))
	for name, lit := range fields {
		f, ok := d.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, d.name, name)
		}
		v, err := ParseLiteral(f.Type, lit)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		args[name] = v
	}
	return args, nil
}

// FromLiterals is FromArgs over ParseArgs.
func (d *Descriptor) FromLiterals(fields map[string]string) (Key, error) {
	args, err := d.ParseArgs(fields)
	if err != nil {
		return Key{}, err
	}
	return d.FromArgs(args)
}

// FromBytes copies b into a new key. A short b is padded with zero bytes and
// excess bytes are ignored.
func (d *Descriptor) FromBytes(b []byte) Key {
	k := Key{desc: d, buf: make([]byte, d.width)}
	copy(k.buf, b)
	return k
}

// Default returns the key with every field set to its default.
func (d *Descriptor) Default() Key {
	return Key{desc: d, buf: bytes.Clone(d.defaults)}
}

// MinKey returns the smallest key in the key space.
func (d *Descriptor) MinKey() Key {
	return Key{desc: d, buf: bytes.Clone(d.minimum)}
}

// MaxKey returns the largest key in the key space.
func (d *Descriptor) MaxKey() Key {
	return Key{desc: d, buf: bytes.Clone(d.maximum)}
}

// Descriptor returns the descriptor of k.
func (k Key) Descriptor() *Descriptor { return k.desc }

// Bytes returns the encoded key. The slice aliases the key.
func (k Key) Bytes() []byte { return k.buf }

// Clone returns a copy of k that shares no memory with it.
func (k Key) Clone() Key {
	return Key{desc: k.desc, buf: bytes.Clone(k.buf)}
}

// Compare compares the encodings of k and o.
func (k Key) Compare(o Key) int { return bytes.Compare(k.buf, o.buf) }

// CompareBytes compares the encoding of k with a raw byte slice.
func (k Key) CompareBytes(b []byte) int { return bytes.Compare(k.buf, b) }

// Less reports whether k sorts before o.
func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

// Equal reports whether k and o are byte-identical.
func (k Key) Equal(o Key) bool { return bytes.Equal(k.buf, o.buf) }

// Hash returns the xxhash64 of the encoded key. Equal keys hash equal.
func (k Key) Hash() uint64 { return xxhash.Sum64(k.buf) }

// Values decodes every field in declaration order.
func (k Key) Values() []Value {
	vs := make([]Value, len(k.desc.fields))
	for i := range vs {
		vs[i] = k.Get(i)
	}
	return vs
}

func (k Key) field(i int) (*FieldSpec, []byte) {
	f := &k.desc.fields[i]
	return f, k.buf[f.Offset:f.End()]
}

// Get decodes field i.
func (k Key) Get(i int) Value {
	f, b := k.field(i)
	return Value{typ: f.Type, raw: bytes.Clone(b)}
}

// Set overwrites field i with v, leaving every other byte untouched.
func (k Key) Set(i int, v Value) error {
	f, b := k.field(i)
	if err := v.expect(f.Type); err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	copy(b, v.raw)
	return nil
}

func (k Key) typed(i int, t FieldType, method string) []byte {
	f, b := k.field(i)
	if f.Type != t {
		panic(&FieldTypeError{Method: method, Field: f.Name, Type: f.Type})
	}
	return b
}

// Int8 decodes the i8 field i.
func (k Key) Int8(i int) int8 {
	// Single byte fields are read by index.
	return int8(k.typed(i, I8, "Int8")[0] ^ 0x80)
}

// Int16 decodes the i16 field i.
func (k Key) Int16(i int) int16 {
	return int16(binary.BigEndian.Uint16(k.typed(i, I16, "Int16")) ^ 0x8000)
}

// Int32 decodes the i32 field i.
func (k Key) Int32(i int) int32 {
	return int32(binary.BigEndian.Uint32(k.typed(i, I32, "Int32")) ^ 0x80000000)
}

// Int64 decodes the i64 field i.
func (k Key) Int64(i int) int64 {
	return int64(binary.BigEndian.Uint64(k.typed(i, I64, "Int64")) ^ (1 << 63))
}

// Int128 decodes the i128 field i.
func (k Key) Int128(i int) Int128 {
	return int128FromFlipped(uint128.FromBytesBE(k.typed(i, I128, "Int128")))
}

// Uint8 decodes the u8 field i.
func (k Key) Uint8(i int) uint8 {
	return k.typed(i, U8, "Uint8")[0]
}

// Uint16 decodes the u16 field i.
func (k Key) Uint16(i int) uint16 {
	return binary.BigEndian.Uint16(k.typed(i, U16, "Uint16"))
}

// Uint32 decodes the u32 field i.
func (k Key) Uint32(i int) uint32 {
	return binary.BigEndian.Uint32(k.typed(i, U32, "Uint32"))
}

// Uint64 decodes the u64 field i.
func (k Key) Uint64(i int) uint64 {
	return binary.BigEndian.Uint64(k.typed(i, U64, "Uint64"))
}

// Uint128 decodes the u128 field i.
func (k Key) Uint128(i int) uint128.Uint128 {
	return uint128.FromBytesBE(k.typed(i, U128, "Uint128"))
}

// Array returns the bytes of array field i. The slice aliases the key and
// must be treated as read-only.
func (k Key) Array(i int) []byte {
	f, b := k.field(i)
	if f.Type.Kind != KindArray {
		panic(&FieldTypeError{Method: "Array", Field: f.Name, Type: f.Type})
	}
	return b[:len(b):len(b)]
}

// SetInt8 encodes v into the i8 field i.
func (k Key) SetInt8(i int, v int8) {
	k.typed(i, I8, "SetInt8")[0] = uint8(v) ^ 0x80
}

// SetInt16 encodes v into the i16 field i.
func (k Key) SetInt16(i int, v int16) {
	binary.BigEndian.PutUint16(k.typed(i, I16, "SetInt16"), uint16(v)^0x8000)
}

// SetInt32 encodes v into the i32 field i.
func (k Key) SetInt32(i int, v int32) {
	binary.BigEndian.PutUint32(k.typed(i, I32, "SetInt32"), uint32(v)^0x80000000)
}

// SetInt64 encodes v into the i64 field i.
func (k Key) SetInt64(i int, v int64) {
	binary.BigEndian.PutUint64(k.typed(i, I64, "SetInt64"), uint64(v)^(1<<63))
}

// SetInt128 encodes v into the i128 field i.
func (k Key) SetInt128(i int, v Int128) {
	v.flip().PutBytesBE(k.typed(i, I128, "SetInt128"))
}

// SetUint8 encodes v into the u8 field i.
func (k Key) SetUint8(i int, v uint8) {
	k.typed(i, U8, "SetUint8")[0] = v
}

// SetUint16 encodes v into the u16 field i.
func (k Key) SetUint16(i int, v uint16) {
	binary.BigEndian.PutUint16(k.typed(i, U16, "SetUint16"), v)
}

// SetUint32 encodes v into the u32 field i.
func (k Key) SetUint32(i int, v uint32) {
	binary.BigEndian.PutUint32(k.typed(i, U32, "SetUint32"), v)
}

// SetUint64 encodes v into the u64 field i.
func (k Key) SetUint64(i int, v uint64) {
	binary.BigEndian.PutUint64(k.typed(i, U64, "SetUint64"), v)
}

// SetUint128 encodes v into the u128 field i.
func (k Key) SetUint128(i int, v uint128.Uint128) {
	v.PutBytesBE(k.typed(i, U128, "SetUint128"))
}

// SetArray copies v into array field i. It panics unless len(v) equals the
// array length.
func (k Key) SetArray(i int, v []byte) {
	f, b := k.field(i)
	if f.Type != Array(len(v)) {
		panic(&FieldTypeError{Method: "SetArray", Field: f.Name, Type: f.Type})
	}
	copy(b, v)
}
