// Package keytest generates reproducible field values and ordered key tuples
// for property tests of keycodec users.
package keytest

import (
	"math/rand"
	"sort"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

// Generator draws values from a seeded source. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Value returns a uniformly random value of t.
//
// Every encoding of t is a valid value, so drawing random encoded bytes is
// uniform over the type's whole range.
func (g *Generator) Value(t keycodec.FieldType) keycodec.Value {
	raw := make([]byte, t.Size())
	g.rng.Read(raw)
	return fromEncoded(t, raw)
}

// Edges returns the boundary values of t: minimum, maximum and, for integers,
// zero and its neighbours.
func Edges(t keycodec.FieldType) []keycodec.Value {
	edges := []keycodec.Value{keycodec.MinValue(t), keycodec.MaxValue(t)}
	if t.Kind == keycodec.KindArray {
		return edges
	}
	zero := keycodec.ZeroValue(t)
	edges = append(edges, zero)
	raw := zero.Encoded()
	if t.Signed() {
		edges = append(edges, fromEncoded(t, step(raw, false)), fromEncoded(t, step(raw, true)))
	} else {
		edges = append(edges, fromEncoded(t, step(raw, true)))
	}
	return edges
}

// Sorted returns n distinct values of t in ascending order. n must not exceed
// the number of values of t.
func (g *Generator) Sorted(t keycodec.FieldType, n int) []keycodec.Value {
	seen := make(map[string]keycodec.Value, n)
	for len(seen) < n {
		v := g.Value(t)
		seen[string(v.Encoded())] = v
	}
	out := make([]keycodec.Value, 0, n)
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Tuple returns a random value for every field of d.
func (g *Generator) Tuple(d *keycodec.Descriptor) []keycodec.Value {
	vs := make([]keycodec.Value, d.NumFields())
	for i := range vs {
		vs[i] = g.Value(d.Field(i).Type)
	}
	return vs
}

// OrderedTuples returns the cartesian product of perField sorted distinct
// values per field, enumerated in lexicographic tuple order. The result has
// perField^NumFields entries.
func (g *Generator) OrderedTuples(d *keycodec.Descriptor, perField int) [][]keycodec.Value {
	columns := make([][]keycodec.Value, d.NumFields())
	for i := range columns {
		columns[i] = g.Sorted(d.Field(i).Type, perField)
	}
	tuples := [][]keycodec.Value{nil}
	for _, col := range columns {
		next := make([][]keycodec.Value, 0, len(tuples)*len(col))
		for _, prefix := range tuples {
			for _, v := range col {
				t := make([]keycodec.Value, len(prefix), len(prefix)+1)
				copy(t, prefix)
				next = append(next, append(t, v))
			}
		}
		tuples = next
	}
	return tuples
}

// CompareTuples compares two tuples field by field using the decoded value
// order of each field. It is the reference order keys must reproduce.
func CompareTuples(a, b []keycodec.Value) int {
	for i := range a {
		if c := compareValue(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareValue(a, b keycodec.Value) int {
	if big := a.Big(); big != nil {
		return big.Cmp(b.Big())
	}
	x, _ := a.Array(a.Type().Len)
	y, _ := b.Array(b.Type().Len)
	for i := range x {
		switch {
		case x[i] < y[i]:
			return -1
		case x[i] > y[i]:
			return 1
		}
	}
	return 0
}

func fromEncoded(t keycodec.FieldType, raw []byte) keycodec.Value {
	v, err := keycodec.DecodeValue(t, raw)
	if err != nil {
		panic(err)
	}
	return v
}

// step increments or decrements a big-endian unsigned number, wrapping around.
func step(raw []byte, up bool) []byte {
	out := append([]byte(nil), raw...)
	for i := len(out) - 1; i >= 0; i-- {
		if up {
			out[i]++
			if out[i] != 0 {
				break
			}
		} else {
			out[i]--
			if out[i] != 0xFF {
				break
			}
		}
	}
	return out
}
