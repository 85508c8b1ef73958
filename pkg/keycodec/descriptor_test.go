package keycodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

func TestDescriptor_Offsets(t *testing.T) {
	assert.Equal(t, "SampleKey", sampleKey.Name())
	assert.Equal(t, 18, sampleKey.Width())
	assert.Equal(t, []int{8, 2, 1, 4, 3}, sampleKey.FieldSizes())

	want := []struct {
		name   string
		offset int
		end    int
	}{
		{"id", 0, 8},
		{"word", 8, 10},
		{"byte", 10, 11},
		{"long", 11, 15},
		{"end", 15, 18},
	}
	for i, w := range want {
		f := sampleKey.Field(i)
		assert.Equal(t, i, f.Index)
		assert.Equal(t, w.name, f.Name)
		assert.Equal(t, w.offset, f.Offset)
		assert.Equal(t, w.end, f.End())
		start, end := f.Range()
		assert.Equal(t, w.offset, start)
		assert.Equal(t, w.end, end)
	}

	// Offsets are a running sum and the last field ends at the key width.
	for _, d := range []*keycodec.Descriptor{sampleKey, everyKind, eventKey} {
		offset := 0
		for _, f := range d.Fields() {
			assert.Equal(t, offset, f.Offset, "%s.%s", d.Name(), f.Name)
			offset += f.Size()
		}
		assert.Equal(t, d.Width(), offset)
	}
	assert.Equal(t, 8+4+2+1+3+8+4+2+1+16+16, everyKind.Width())
}

func TestDescriptor_FieldConstants(t *testing.T) {
	f, ok := sampleKey.Lookup("long")
	require.True(t, ok)
	assert.Equal(t, []byte{0x12, 0x34, 0x56, 0x78}, f.DefaultBytes())
	assert.Equal(t, []byte{0, 0, 0, 0}, f.MinBytes())
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, f.MaxBytes())
	assert.Equal(t, "long", f.DisplayName)
	assert.False(t, f.HasCustomBounds())

	id, ok := eventKey.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, "ID", id.DisplayName)

	_, ok = eventKey.Lookup("missing")
	assert.False(t, ok)
}

func TestNewDescriptor_Errors(t *testing.T) {
	tests := map[string]struct {
		fields []keycodec.FieldDecl
		want   error
	}{
		"no fields": {
			want: keycodec.ErrNoFields,
		},
		"zero length array": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.Array(0))},
			want:   keycodec.ErrZeroLengthArray,
		},
		"invalid kind": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.FieldType{})},
			want:   keycodec.ErrUnsupportedKind,
		},
		"kind outside the closed set": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.FieldType{Kind: keycodec.KindArray + 1})},
			want:   keycodec.ErrUnsupportedKind,
		},
		"integer with a length": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.FieldType{Kind: keycodec.KindUint8, Len: 2})},
			want:   keycodec.ErrUnsupportedKind,
		},
		"empty name": {
			fields: []keycodec.FieldDecl{keycodec.Field("", keycodec.U8)},
			want:   keycodec.ErrInvalidFieldName,
		},
		"duplicate name": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.U8), keycodec.Field("a", keycodec.U16)},
			want:   keycodec.ErrDuplicateField,
		},
		"min set twice": {
			fields: []keycodec.FieldDecl{keycodec.Field("long", keycodec.U32,
				keycodec.WithMin(keycodec.Uint32Value(0x11111111)),
				keycodec.WithDefault(keycodec.Uint32Value(0x18245637)),
				keycodec.WithMin(keycodec.Uint32Value(0x99999999)),
			)},
			want: keycodec.ErrConflictingOverride,
		},
		"default set twice": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.U8,
				keycodec.WithDefault(keycodec.Uint8Value(1)),
				keycodec.WithDefault(keycodec.Uint8Value(1)),
			)},
			want: keycodec.ErrConflictingOverride,
		},
		"name set twice": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.U8,
				keycodec.WithDisplayName("A"),
				keycodec.WithDisplayName("B"),
			)},
			want: keycodec.ErrConflictingOverride,
		},
		"default of the wrong type": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.U8, keycodec.WithDefault(keycodec.Int8Value(1)))},
			want:   keycodec.ErrTypeMismatch,
		},
		"max of the wrong array size": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.Array(3), keycodec.WithMax(keycodec.ArrayValue([]byte{1})))},
			want:   keycodec.ErrSizeMismatch,
		},
		"min above max": {
			fields: []keycodec.FieldDecl{keycodec.Field("a", keycodec.I16,
				keycodec.WithMin(keycodec.Int16Value(10)),
				keycodec.WithMax(keycodec.Int16Value(-10)),
			)},
			want: keycodec.ErrInvalidBounds,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := keycodec.NewDescriptor("Broken", tc.fields...)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewDescriptor_ReportsEveryBadField(t *testing.T) {
	_, err := keycodec.NewDescriptor("Broken",
		keycodec.Field("a", keycodec.Array(0)),
		keycodec.Field("b", keycodec.U8),
		keycodec.Field("b", keycodec.U8),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, keycodec.ErrZeroLengthArray)
	assert.ErrorIs(t, err, keycodec.ErrDuplicateField)
}

func TestMustDescriptor_Panics(t *testing.T) {
	assert.Panics(t, func() {
		keycodec.MustDescriptor("Empty")
	})
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in   string
		want keycodec.FieldType
		err  error
	}{
		{in: "i8", want: keycodec.I8},
		{in: "i128", want: keycodec.I128},
		{in: "u64", want: keycodec.U64},
		{in: " u16 ", want: keycodec.U16},
		{in: "[u8; 3]", want: keycodec.Array(3)},
		{in: "[u8;160]", want: keycodec.Array(160)},
		{in: "bytes:20", want: keycodec.Array(20)},
		{in: "[u8; 0]", err: keycodec.ErrZeroLengthArray},
		{in: "bytes:0", err: keycodec.ErrZeroLengthArray},
		{in: "[u16; 3]", err: keycodec.ErrUnsupportedKind},
		{in: "f64", err: keycodec.ErrUnsupportedKind},
		{in: "string", err: keycodec.ErrUnsupportedKind},
		{in: "bytes:x", err: keycodec.ErrUnsupportedKind},
		{in: "", err: keycodec.ErrUnsupportedKind},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := keycodec.ParseFieldType(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Size(), tt.want.Size())
		})
	}
}

func TestFieldType_String(t *testing.T) {
	assert.Equal(t, "u32", keycodec.U32.String())
	assert.Equal(t, "i128", keycodec.I128.String())
	assert.Equal(t, "[u8; 5]", keycodec.Array(5).String())

	for _, typ := range allTypes {
		back, err := keycodec.ParseFieldType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, back)
	}
}

func TestDescriptor_FieldsAreCopies(t *testing.T) {
	d := keycodec.MustDescriptor("Pair",
		keycodec.Field("a", keycodec.U32),
		keycodec.Field("b", keycodec.U32),
	)

	f := d.Field(1)
	f.Offset = 0
	f.Type = keycodec.U8
	fields := d.Fields()
	fields[1].Offset = 0
	fields[1].Type = keycodec.U8
	byName, ok := d.Lookup("b")
	require.True(t, ok)
	byName.Offset = 0
	byName.Max = keycodec.Uint32Value(1)

	b := d.Field(1)
	assert.Equal(t, 4, b.Offset)
	assert.Equal(t, keycodec.U32, b.Type)
	assert.True(t, b.Max.Equal(keycodec.MaxValue(keycodec.U32)))

	k, err := d.New(keycodec.Uint32Value(0x11223344), keycodec.Uint32Value(0))
	require.NoError(t, err)
	assert.Panics(t, func() { k.SetUint8(1, 0xFF) })
	k.SetUint32(1, 0xFFFFFFFF)
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44, 0xFF, 0xFF, 0xFF, 0xFF}, k.Bytes())
}
