package keycodec

import (
	"fmt"
	"math"
	"math/big"

	"lukechampine.com/uint128"
)

// Int128 is a signed 128-bit two's complement integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Bounds of Int128.
var (
	MinInt128 = Int128{Hi: math.MinInt64, Lo: 0}
	MaxInt128 = Int128{Hi: math.MaxInt64, Lo: math.MaxUint64}
)

// Int128From64 sign-extends v.
func Int128From64(v int64) Int128 {
	return Int128{Hi: v >> 63, Lo: uint64(v)}
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x Int128) Cmp(y Int128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

// Big returns x as a big.Int.
func (x Int128) Big() *big.Int {
	b := new(big.Int).SetInt64(x.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(x.Lo))
}

func (x Int128) String() string {
	return x.Big().String()
}

// flip returns x with the sign bit inverted, reinterpreted as unsigned.
func (x Int128) flip() uint128.Uint128 {
	return uint128.New(x.Lo, uint64(x.Hi)^(1<<63))
}

func int128FromFlipped(u uint128.Uint128) Int128 {
	return Int128{Hi: int64(u.Hi ^ (1 << 63)), Lo: u.Lo}
}

var (
	bigMinInt128 = MinInt128.Big()
	bigMaxInt128 = MaxInt128.Big()
	bigMask64    = new(big.Int).SetUint64(math.MaxUint64)
)

// Int128FromBig converts b, which must be within the Int128 range.
func Int128FromBig(b *big.Int) (Int128, error) {
	if b.Cmp(bigMinInt128) < 0 || b.Cmp(bigMaxInt128) > 0 {
		return Int128{}, fmt.Errorf("%w: %s overflows i128", ErrInvalidLiteral, b)
	}
	// b - MIN is the sign-flipped encoding of b.
	u := new(big.Int).Sub(b, bigMinInt128)
	return int128FromFlipped(uint128FromBigUnchecked(u)), nil
}

func uint128FromBigUnchecked(b *big.Int) uint128.Uint128 {
	lo := new(big.Int).And(b, bigMask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return uint128.New(lo, hi)
}
