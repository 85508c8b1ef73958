package keycodec

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minMaxKey(t *testing.T) *Descriptor {
	t.Helper()
	d, err := NewDescriptor("MinMaxKey",
		Field("id", U64, WithDisplayName("ID"),
			WithMin(Uint64Value(1)),
			WithMax(Uint64Value(0x8000000000000000))),
		Field("word", U16, WithDisplayName("Word"),
			WithMin(Uint16Value(150)),
			WithDefault(Uint16Value(12453)),
			WithMax(Uint16Value(60000))),
		Field("byte", U8, WithDisplayName("Byte"),
			WithDefault(Uint8Value(0xFF)),
			WithMin(Uint8Value(0xFF)),
			WithMax(Uint8Value(0xFF))),
		Field("long", U32, WithDisplayName("Longword"),
			WithMin(Uint32Value(0x11111111)),
			WithDefault(Uint32Value(0x18245637))),
		Field("end", Array(3), WithDisplayName("End array"),
			WithDefault(ArrayValue([]byte{0xBA, 0xBA, 0xBA})),
			WithMax(ArrayValue([]byte{0xEF, 0xEF, 0xEF})),
			WithMin(ArrayValue([]byte{0x20, 0x20, 0x20}))),
	)
	require.NoError(t, err)
	return d
}

func TestBounds_CustomFields(t *testing.T) {
	d := minMaxKey(t)
	require.True(t, d.HasCustomBounds())

	assert.Equal(t, "0000000000000001"+"0096"+"ff"+"11111111"+"202020", hex.EncodeToString(d.MinKey().Bytes()))
	assert.Equal(t, "8000000000000000"+"ea60"+"ff"+"ffffffff"+"efefef", hex.EncodeToString(d.MaxKey().Bytes()))
	assert.Equal(t, "0000000000000000"+"30a5"+"ff"+"18245637"+"bababa", hex.EncodeToString(d.Default().Bytes()))

	assert.True(t, d.MinKey().Less(d.MaxKey()))
	long, _ := d.Lookup("long")
	assert.True(t, long.customMin)
	assert.False(t, long.customMax)
}

func TestBounds_UniformShortcut(t *testing.T) {
	descriptors := []*Descriptor{
		MustDescriptor("Unsigned", Field("a", U64), Field("b", U8)),
		MustDescriptor("Signed", Field("a", I8), Field("b", I128), Field("c", I32)),
		MustDescriptor("Mixed", Field("a", Array(5)), Field("b", I16, WithDefault(Int16Value(-3))), Field("c", U128)),
	}

	for _, d := range descriptors {
		t.Run(d.Name(), func(t *testing.T) {
			require.False(t, d.HasCustomBounds())

			zeros := make([]byte, d.Width())
			ones := bytes.Repeat([]byte{0xFF}, d.Width())
			assert.Equal(t, zeros, d.MinKey().Bytes())
			assert.Equal(t, ones, d.MaxKey().Bytes())

			// The general per-field walk over type bounds agrees with the fill.
			assert.Equal(t, zeros, d.walk(func(f *FieldSpec) Value { return f.Min }))
			assert.Equal(t, ones, d.walk(func(f *FieldSpec) Value { return f.Max }))
		})
	}
}

func TestBounds_ReturnedKeysAreCopies(t *testing.T) {
	d := MustDescriptor("K", Field("a", U16))
	k := d.MaxKey()
	k.SetUint16(0, 1)
	assert.Equal(t, []byte{0xFF, 0xFF}, d.MaxKey().Bytes())

	def := d.Default()
	def.SetUint16(0, 9)
	assert.Equal(t, []byte{0, 0}, d.Default().Bytes())
}

func TestBounds_SignedTypeRange(t *testing.T) {
	d := MustDescriptor("S", Field("a", I32), Field("b", I8))
	assert.Equal(t, int32(-2147483648), d.MinKey().Int32(0))
	assert.Equal(t, int8(-128), d.MinKey().Int8(1))
	assert.Equal(t, int32(2147483647), d.MaxKey().Int32(0))
	assert.Equal(t, int8(127), d.MaxKey().Int8(1))
	assert.Equal(t, int32(0), d.Default().Int32(0))
}
