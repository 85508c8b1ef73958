package keycodec_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/keycodec/keytest"
)

func TestValue_ConversionErrors(t *testing.T) {
	t.Run("type mismatch", func(t *testing.T) {
		_, err := keycodec.Int16Value(5).Uint16()
		require.ErrorIs(t, err, keycodec.ErrTypeMismatch)
		assert.Contains(t, err.Error(), "cannot convert i16 to u16")

		var convErr *keycodec.ConversionError
		require.True(t, errors.As(err, &convErr))
		assert.Equal(t, keycodec.U16, convErr.Want)
		assert.Equal(t, keycodec.I16, convErr.Got)
	})

	t.Run("width mismatch", func(t *testing.T) {
		_, err := keycodec.Uint32Value(5).Uint64()
		assert.ErrorIs(t, err, keycodec.ErrTypeMismatch)
	})

	t.Run("array size mismatch", func(t *testing.T) {
		_, err := keycodec.ArrayValue([]byte{1, 2, 3}).Array(4)
		require.ErrorIs(t, err, keycodec.ErrSizeMismatch)
		assert.NotErrorIs(t, err, keycodec.ErrTypeMismatch)
		assert.Contains(t, err.Error(), "3-byte array to 4-byte array")
	})

	t.Run("integer as array", func(t *testing.T) {
		_, err := keycodec.Uint8Value(1).Array(1)
		assert.ErrorIs(t, err, keycodec.ErrTypeMismatch)
	})

	t.Run("zero value", func(t *testing.T) {
		var v keycodec.Value
		assert.False(t, v.IsValid())
		_, err := v.Int8()
		assert.ErrorIs(t, err, keycodec.ErrTypeMismatch)
		assert.Equal(t, "<invalid>", v.String())
	})
}

func TestValue_TypedRoundTrip(t *testing.T) {
	i8, err := keycodec.Int8Value(-7).Int8()
	require.NoError(t, err)
	assert.Equal(t, int8(-7), i8)

	i64, err := keycodec.Int64Value(-1 << 40).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<40), i64)

	u128 := uint128.New(0xDEADBEEF, 0x0123456789ABCDEF)
	got, err := keycodec.Uint128Value(u128).Uint128()
	require.NoError(t, err)
	assert.Equal(t, u128, got)

	arr := []byte{9, 8, 7}
	v := keycodec.ArrayValue(arr)
	arr[0] = 0
	out, err := v.Array(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, out, "ArrayValue copies its input")
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		want keycodec.FieldType
	}{
		{int8(1), keycodec.I8},
		{int16(1), keycodec.I16},
		{int32(1), keycodec.I32},
		{int64(1), keycodec.I64},
		{1, keycodec.I64},
		{keycodec.Int128From64(1), keycodec.I128},
		{uint8(1), keycodec.U8},
		{uint16(1), keycodec.U16},
		{uint32(1), keycodec.U32},
		{uint64(1), keycodec.U64},
		{uint(1), keycodec.U64},
		{uint128.From64(1), keycodec.U128},
		{[]byte{1, 2}, keycodec.Array(2)},
		{keycodec.Uint8Value(3), keycodec.U8},
	}
	for _, tt := range tests {
		v, err := keycodec.ValueOf(tt.in)
		require.NoError(t, err, "%T", tt.in)
		assert.Equal(t, tt.want, v.Type(), "%T", tt.in)
	}

	_, err := keycodec.ValueOf(1.5)
	assert.ErrorIs(t, err, keycodec.ErrUnsupportedKind)
}

func TestDecodeValue(t *testing.T) {
	v, err := keycodec.DecodeValue(keycodec.I16, []byte{0x7F, 0xFF})
	require.NoError(t, err)
	x, err := v.Int16()
	require.NoError(t, err)
	assert.Equal(t, int16(-1), x)

	_, err = keycodec.DecodeValue(keycodec.I16, []byte{0x7F})
	assert.ErrorIs(t, err, keycodec.ErrSizeMismatch)

	_, err = keycodec.DecodeValue(keycodec.Array(0), nil)
	assert.ErrorIs(t, err, keycodec.ErrZeroLengthArray)
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		typ  keycodec.FieldType
		in   string
		want string // Value.String of the parsed value
		err  error
	}{
		{typ: keycodec.U64, in: "0x123456789ABCDEF0", want: "0x123456789ABCDEF0"},
		{typ: keycodec.U64, in: "18446744073709551615", want: "0xFFFFFFFFFFFFFFFF"},
		{typ: keycodec.U64, in: "18446744073709551616", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.U32, in: "0x12345678_u32", want: "0x12345678"},
		{typ: keycodec.U32, in: "0x1234_5678", want: "0x12345678"},
		{typ: keycodec.U32, in: "0x12345678_u16", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.U16, in: "12453", want: "0x30A5"},
		{typ: keycodec.U16, in: "-1", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.U8, in: "0b1010", want: "0x0A"},
		{typ: keycodec.I8, in: "-128", want: "-128"},
		{typ: keycodec.I8, in: "127", want: "127"},
		{typ: keycodec.I8, in: "128", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.I8, in: "-129", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.I32, in: "-0x10", want: "-16"},
		{typ: keycodec.I128, in: "-170141183460469231731687303715884105728", want: "-170141183460469231731687303715884105728"},
		{typ: keycodec.I128, in: "170141183460469231731687303715884105728", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.U128, in: "340282366920938463463374607431768211455", want: "0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"},
		{typ: keycodec.U64, in: "twelve", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(3), in: "0xA5A5A5", want: "0xA5A5A5"},
		{typ: keycodec.Array(3), in: "a5a5a5", want: "0xA5A5A5"},
		{typ: keycodec.Array(3), in: "[0xA5; 3]", want: "0xA5A5A5"},
		{typ: keycodec.Array(3), in: "[0xA5_u8; 3]", want: "0xA5A5A5"},
		{typ: keycodec.Array(3), in: "[0x12, 0x34, 0x56]", want: "0x123456"},
		{typ: keycodec.Array(3), in: "[18, 52, 86]", want: "0x123456"},
		{typ: keycodec.Array(3), in: "0xA5A5", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(3), in: "[0xA5; 4]", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(3), in: "[1, 2]", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(3), in: "[1, 2, 256]", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(3), in: "[1, 2, 3", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(3), in: "0xZZZZZZ", err: keycodec.ErrInvalidLiteral},
		{typ: keycodec.Array(0), in: "", err: keycodec.ErrZeroLengthArray},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String()+" "+tt.in, func(t *testing.T) {
			v, err := keycodec.ParseLiteral(tt.typ, tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, v.Type())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestValue_StringRoundTrip(t *testing.T) {
	gen := keytest.New(99)
	for _, typ := range allTypes {
		samples := append(keytest.Edges(typ), gen.Value(typ), gen.Value(typ))
		for _, v := range samples {
			back, err := keycodec.ParseLiteral(typ, v.String())
			require.NoError(t, err, "%s %s", typ, v)
			assert.True(t, v.Equal(back), "%s: %s != %s", typ, v, back)
		}
	}
}

func TestValue_Big(t *testing.T) {
	assert.Equal(t, "-1", keycodec.Int32Value(-1).Big().String())
	assert.Equal(t, "-128", keycodec.Int8Value(-128).Big().String())
	assert.Equal(t, "65535", keycodec.Uint16Value(65535).Big().String())
	assert.Nil(t, keycodec.ArrayValue([]byte{1}).Big())
}

func TestInt128(t *testing.T) {
	assert.Equal(t, "-170141183460469231731687303715884105728", keycodec.MinInt128.String())
	assert.Equal(t, "170141183460469231731687303715884105727", keycodec.MaxInt128.String())
	assert.Equal(t, "-1", keycodec.Int128From64(-1).String())

	assert.Equal(t, -1, keycodec.Int128From64(-1).Cmp(keycodec.Int128From64(0)))
	assert.Equal(t, 1, keycodec.MaxInt128.Cmp(keycodec.MinInt128))
	assert.Equal(t, 0, keycodec.Int128From64(7).Cmp(keycodec.Int128From64(7)))

	b, _ := new(big.Int).SetString("-98765432109876543210987654321", 10)
	x, err := keycodec.Int128FromBig(b)
	require.NoError(t, err)
	assert.Equal(t, b.String(), x.String())

	_, err = keycodec.Int128FromBig(new(big.Int).Lsh(big.NewInt(1), 127))
	assert.ErrorIs(t, err, keycodec.ErrInvalidLiteral)
}
