// Package keycodec packs a fixed, ordered set of typed fields into a single
// fixed-width byte buffer whose byte-wise order matches the order of the
// decoded field tuples.
//
// Keys produced by this package are meant to be used directly as keys of an
// ordered key-value store: comparing two encoded keys with bytes.Compare gives
// the same answer as comparing their fields one by one, left to right.
//
// # Field Types
//
// A field is one of:
//   - a signed integer of 1, 2, 4, 8 or 16 bytes (I8 .. I128)
//   - an unsigned integer of 1, 2, 4, 8 or 16 bytes (U8 .. U128)
//   - a fixed-length byte array (Array(n), n > 0)
//
// The set is closed. Variable length fields, optional fields and nested keys
// are not supported.
//
// # Layout
//
// Fields are written in declaration order, back to back, without padding or
// tags. Field i starts at the sum of the widths of fields 0..i-1 and the width
// of the key is the sum of all field widths:
//
//	(id u64, index u32)
//	[id(8)][index(4)]                    width 12
//
// Integers are big-endian. Signed integers are XORed with the minimum value of
// their type before being written, which flips the sign bit and maps
// [MIN, MAX] monotonically onto [0, 2^(8W)-1]:
//
//	i32  -1  -> 7F FF FF FF
//	i32   0  -> 80 00 00 00
//	i32   1  -> 80 00 00 01
//
// Arrays are copied verbatim. Callers storing their own data in an array field
// must pre-encode it in an order-preserving form.
//
// # Usage
//
//	var EventKey = keycodec.MustDescriptor("EventKey",
//	    keycodec.Field("id", keycodec.U64, keycodec.WithDisplayName("ID")),
//	    keycodec.Field("index", keycodec.U32),
//	)
//
//	k, err := EventKey.New(keycodec.Uint64Value(5), keycodec.Uint32Value(7))
//	if err != nil {
//	    return err
//	}
//	k.SetUint32(1, 8)
//	fmt.Println(k) // 0x0000000000000005_00000008
//
// Keys can also be built from named arguments, where omitted fields take their
// defaults (FromArgs), or from raw bytes, where a short slice is padded with
// zeros and a long one truncated (FromBytes).
//
// # Bounds
//
// Every field has a default, a minimum and a maximum. Unless overridden they
// are zero, the type minimum and the type maximum. MinKey and MaxKey return the
// smallest and largest keys in the key space and are intended as range scan
// sentinels. When no field overrides its minimum or maximum they are simply
// all 0x00 and all 0xFF; otherwise they are assembled field by field.
//
// # Errors
//
// Errors fall in two phases. Building a Descriptor validates the declaration
// once: unsupported kinds, empty arrays, duplicate names, attributes set twice,
// overrides of the wrong type and inverted bounds. Once a descriptor exists,
// encoding, decoding, the typed getters and setters and FromBytes cannot fail.
// The only runtime errors come from converting a Value to a different type
// (ErrTypeMismatch) or array length (ErrSizeMismatch).
//
// # Thread Safety
//
// A Descriptor is immutable after construction and may be shared freely. A Key
// is a plain buffer owned by its creator; concurrent writes to the same Key
// need external synchronization.
package keycodec
