package keycodec_test

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/keycodec/keytest"
)

var allTypes = []keycodec.FieldType{
	keycodec.I8, keycodec.I16, keycodec.I32, keycodec.I64, keycodec.I128,
	keycodec.U8, keycodec.U16, keycodec.U32, keycodec.U64, keycodec.U128,
	keycodec.Array(1), keycodec.Array(3), keycodec.Array(20),
}

func TestSignFlipOrdering(t *testing.T) {
	pair := keycodec.MustDescriptor("Pair",
		keycodec.Field("id", keycodec.U64),
		keycodec.Field("delta", keycodec.I32),
	)

	tuples := []struct {
		id    uint64
		delta int32
	}{
		{5, -2147483648},
		{5, -1},
		{5, 0},
		{5, 1},
		{5, 2147483647},
		{6, -1},
	}

	var prev keycodec.Key
	for i, tc := range tuples {
		k, err := pair.New(keycodec.Uint64Value(tc.id), keycodec.Int32Value(tc.delta))
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, -1, bytes.Compare(prev.Bytes(), k.Bytes()),
				"(%d, %d) should sort after %v", tc.id, tc.delta, prev)
		}
		prev = k
	}
}

func TestSignedEncoding(t *testing.T) {
	tests := []struct {
		in   keycodec.Value
		want string
	}{
		{keycodec.Int8Value(-128), "00"},
		{keycodec.Int8Value(-1), "7f"},
		{keycodec.Int8Value(0), "80"},
		{keycodec.Int8Value(1), "81"},
		{keycodec.Int8Value(127), "ff"},
		{keycodec.Int16Value(-1), "7fff"},
		{keycodec.Int32Value(-1), "7fffffff"},
		{keycodec.Int32Value(1), "80000001"},
		{keycodec.Int64Value(0), "8000000000000000"},
		{keycodec.Int128Value(keycodec.Int128From64(-1)), "7fffffffffffffffffffffffffffffff"},
		{keycodec.Int128Value(keycodec.MinInt128), "00000000000000000000000000000000"},
		{keycodec.Uint16Value(0x1234), "1234"},
	}

	for _, tt := range tests {
		got := fmt.Sprintf("%x", tt.in.Encoded())
		assert.Equal(t, tt.want, got, "encoding of %s %s", tt.in.Type(), tt.in)
	}
}

// TestRoundTrip stores edge and random values of every type into a one-field
// key and reads them back through both the Value and the typed accessors.
func TestRoundTrip(t *testing.T) {
	gen := keytest.New(1)

	for _, typ := range allTypes {
		t.Run(typ.String(), func(t *testing.T) {
			d := keycodec.MustDescriptor("One", keycodec.Field("v", typ))
			samples := keytest.Edges(typ)
			for i := 0; i < 200; i++ {
				samples = append(samples, gen.Value(typ))
			}

			for _, v := range samples {
				k, err := d.New(v)
				require.NoError(t, err)
				assert.True(t, v.Equal(k.Get(0)), "value %s", v)
				assert.Equal(t, v.Encoded(), k.Bytes())
				assertTypedRoundTrip(t, k, v)
			}
		})
	}
}

func assertTypedRoundTrip(t *testing.T, k keycodec.Key, v keycodec.Value) {
	t.Helper()
	c := k.Clone()
	switch v.Type().Kind {
	case keycodec.KindInt8:
		x, err := v.Int8()
		require.NoError(t, err)
		c.SetInt8(0, x)
		assert.Equal(t, x, c.Int8(0))
	case keycodec.KindInt16:
		x, err := v.Int16()
		require.NoError(t, err)
		c.SetInt16(0, x)
		assert.Equal(t, x, c.Int16(0))
	case keycodec.KindInt32:
		x, err := v.Int32()
		require.NoError(t, err)
		c.SetInt32(0, x)
		assert.Equal(t, x, c.Int32(0))
	case keycodec.KindInt64:
		x, err := v.Int64()
		require.NoError(t, err)
		c.SetInt64(0, x)
		assert.Equal(t, x, c.Int64(0))
	case keycodec.KindInt128:
		x, err := v.Int128()
		require.NoError(t, err)
		c.SetInt128(0, x)
		assert.Equal(t, x, c.Int128(0))
		assert.Equal(t, v.Big().String(), x.String())
	case keycodec.KindUint8:
		x, err := v.Uint8()
		require.NoError(t, err)
		c.SetUint8(0, x)
		assert.Equal(t, x, c.Uint8(0))
	case keycodec.KindUint16:
		x, err := v.Uint16()
		require.NoError(t, err)
		c.SetUint16(0, x)
		assert.Equal(t, x, c.Uint16(0))
	case keycodec.KindUint32:
		x, err := v.Uint32()
		require.NoError(t, err)
		c.SetUint32(0, x)
		assert.Equal(t, x, c.Uint32(0))
	case keycodec.KindUint64:
		x, err := v.Uint64()
		require.NoError(t, err)
		c.SetUint64(0, x)
		assert.Equal(t, x, c.Uint64(0))
	case keycodec.KindUint128:
		x, err := v.Uint128()
		require.NoError(t, err)
		c.SetUint128(0, x)
		assert.Equal(t, x, c.Uint128(0))
	case keycodec.KindArray:
		x, err := v.Array(v.Type().Len)
		require.NoError(t, err)
		c.SetArray(0, x)
		assert.Equal(t, x, c.Array(0))
	}
	assert.True(t, k.Equal(c))
}

// TestOrderPreservation enumerates the cartesian product of two sorted values
// per field of an eleven field key. The tuples come out in lexicographic order
// and so must their encodings.
func TestOrderPreservation(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			gen := keytest.New(seed)
			tuples := gen.OrderedTuples(everyKind, 2)
			require.Len(t, tuples, 1<<everyKind.NumFields())

			keys := make([]keycodec.Key, len(tuples))
			for i, tuple := range tuples {
				k, err := everyKind.New(tuple...)
				require.NoError(t, err)
				keys[i] = k
			}

			for i := 1; i < len(keys); i++ {
				require.Equal(t, -1, keytest.CompareTuples(tuples[i-1], tuples[i]))
				require.True(t, keys[i-1].Less(keys[i]), "key[%d] %v !< key[%d] %v", i-1, keys[i-1], i, keys[i])
			}
		})
	}
}

// TestOrderMatchesTupleSort shuffles random tuples, sorts them by decoded value
// and by encoding, and expects the same permutation.
func TestOrderMatchesTupleSort(t *testing.T) {
	gen := keytest.New(42)
	const n = 500

	type entry struct {
		tuple []keycodec.Value
		key   keycodec.Key
	}
	entries := make([]entry, n)
	for i := range entries {
		tuple := gen.Tuple(everyKind)
		// Share leading fields often so later fields decide the order.
		if i > 0 && i%3 != 0 {
			copy(tuple[:i%everyKind.NumFields()], entries[i-1].tuple)
		}
		k, err := everyKind.New(tuple...)
		require.NoError(t, err)
		entries[i] = entry{tuple: tuple, key: k}
	}

	byTuple := append([]entry(nil), entries...)
	sort.SliceStable(byTuple, func(i, j int) bool {
		return keytest.CompareTuples(byTuple[i].tuple, byTuple[j].tuple) < 0
	})
	byKey := append([]entry(nil), entries...)
	sort.SliceStable(byKey, func(i, j int) bool { return byKey[i].key.Less(byKey[j].key) })

	for i := range byTuple {
		assert.True(t, byTuple[i].key.Equal(byKey[i].key), "position %d", i)
	}
}

// TestKeysAsMapKeys checks that byte-identical keys collide and distinct ones
// do not when used as Go map keys.
func TestKeysAsMapKeys(t *testing.T) {
	gen := keytest.New(7)
	tuples := gen.OrderedTuples(everyKind, 2)

	byString := make(map[string]int, len(tuples))
	byHash := make(map[uint64]int, len(tuples))
	for i, tuple := range tuples {
		k, err := everyKind.New(tuple...)
		require.NoError(t, err)
		byString[string(k.Bytes())] = i
		byHash[k.Hash()] = i
	}
	assert.Len(t, byString, len(tuples))
	assert.Len(t, byHash, len(tuples))

	for i, tuple := range tuples {
		k, err := everyKind.New(tuple...)
		require.NoError(t, err)
		assert.Equal(t, i, byString[string(k.Bytes())])
		assert.Equal(t, i, byHash[k.Hash()])
	}
}
