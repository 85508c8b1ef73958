package keycodec_test

import (
	"testing"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/keycodec/keytest"
)

func BenchmarkDescriptor_New(b *testing.B) {
	tuple := keytest.New(1).Tuple(everyKind)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := everyKind.New(tuple...); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKey_SetUint64(b *testing.B) {
	k := everyKind.Default()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.SetUint64(0, uint64(i))
	}
}

func BenchmarkKey_Int128(b *testing.B) {
	k := everyKind.MaxKey()
	var sink keycodec.Int128
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink = k.Int128(10)
	}
	_ = sink
}

func BenchmarkKey_Compare(b *testing.B) {
	gen := keytest.New(2)
	x, _ := everyKind.New(gen.Tuple(everyKind)...)
	y, _ := everyKind.New(gen.Tuple(everyKind)...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Compare(y)
	}
}

func BenchmarkKey_Hash(b *testing.B) {
	k := everyKind.MaxKey()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Hash()
	}
}
