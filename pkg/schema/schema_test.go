package schema

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

const minMaxSchema = `
name: MinMaxKey
fields:
  - name: id
    display: ID
    type: u64
    min: 1
    max: 0x8000000000000000
  - name: word
    display: Word
    type: u16
    min: 150
    default: 12453
    max: 60000
  - name: byte
    display: Byte
    type: u8
    default: 0xFF
    min: 0xFF
    max: 0xFF
  - name: long
    display: Longword
    type: u32
    min: 0x11111111
    default: 0x18245637
  - name: end
    display: End array
    type: "[u8; 3]"
    default: "[0xBA; 3]"
    max: "[0xEF, 0xEF, 0xEF]"
    min: "0x202020"
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(minMaxSchema))
	require.NoError(t, err)

	assert.Equal(t, "MinMaxKey", d.Name())
	assert.Equal(t, 18, d.Width())
	assert.Equal(t, []int{8, 2, 1, 4, 3}, d.FieldSizes())
	assert.True(t, d.HasCustomBounds())

	end, ok := d.Lookup("end")
	require.True(t, ok)
	assert.Equal(t, "End array", end.DisplayName)
	assert.Equal(t, keycodec.Array(3), end.Type)

	assert.Equal(t, "0000000000000001"+"0096"+"ff"+"11111111"+"202020", hex.EncodeToString(d.MinKey().Bytes()))
	assert.Equal(t, "8000000000000000"+"ea60"+"ff"+"ffffffff"+"efefef", hex.EncodeToString(d.MaxKey().Bytes()))
	assert.Equal(t, "0000000000000000"+"30a5"+"ff"+"18245637"+"bababa", hex.EncodeToString(d.Default().Bytes()))
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]struct {
		doc  string
		want error
	}{
		"unknown type": {
			doc:  "name: K\nfields:\n  - name: a\n    type: f32\n",
			want: keycodec.ErrUnsupportedKind,
		},
		"empty array": {
			doc:  "name: K\nfields:\n  - name: a\n    type: bytes:0\n",
			want: keycodec.ErrZeroLengthArray,
		},
		"literal out of range": {
			doc:  "name: K\nfields:\n  - name: a\n    type: i8\n    default: 200\n",
			want: keycodec.ErrInvalidLiteral,
		},
		"no fields": {
			doc:  "name: K\n",
			want: keycodec.ErrNoFields,
		},
		"duplicate": {
			doc:  "name: K\nfields:\n  - name: a\n    type: u8\n  - name: a\n    type: u8\n",
			want: keycodec.ErrDuplicateField,
		},
		"min above max": {
			doc:  "name: K\nfields:\n  - name: a\n    type: i16\n    min: 5\n    max: -5\n",
			want: keycodec.ErrInvalidBounds,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte("fields:\n  - name: a\n    type: u8\n"))
		assert.Error(t, err)
	})

	t.Run("not yaml", func(t *testing.T) {
		_, err := Parse([]byte("name: [unterminated"))
		assert.Error(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	d, err := Parse([]byte(minMaxSchema))
	require.NoError(t, err)

	data, err := Marshal(d)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, d.Width(), back.Width())
	assert.Equal(t, d.Default().Bytes(), back.Default().Bytes())
	assert.Equal(t, d.MinKey().Bytes(), back.MinKey().Bytes())
	assert.Equal(t, d.MaxKey().Bytes(), back.MaxKey().Bytes())
	for i, f := range d.Fields() {
		assert.Equal(t, f.DisplayName, back.Field(i).DisplayName)
	}
}

func TestFromDescriptor_OmitsTypeDefaults(t *testing.T) {
	d := keycodec.MustDescriptor("Plain", keycodec.Field("a", keycodec.I32), keycodec.Field("b", keycodec.Array(2)))
	f := FromDescriptor(d)

	require.Len(t, f.Fields, 2)
	assert.Equal(t, FieldDef{Name: "a", Type: "i32"}, f.Fields[0])
	assert.Equal(t, FieldDef{Name: "b", Type: "[u8; 2]"}, f.Fields[1])
}

func TestLoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "key.yaml")

	sample, err := Parse([]byte(Sample))
	require.NoError(t, err)
	assert.Equal(t, 4+8+20, sample.Width())

	require.NoError(t, Save(sample, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sample.Name(), loaded.Name())
	assert.Equal(t, sample.FieldSizes(), loaded.FieldSizes())

	_, err = Load(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)
}
