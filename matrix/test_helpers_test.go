// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic fixtures shared by the CSR, DIA and
//     contract tests.
//   • Keep tuple construction terse so tables stay readable.

package matrix_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/katalvlaran/grb/matrix"
)

type (
	tup = matrix.Tuple[float64, uint32]
	idx = matrix.Index[uint32]
)

// tp builds a tuple in import order (value, row, col).
func tp(v float64, r, c uint32) tup { return tup{Value: v, Row: r, Col: c} }

// ix builds an index.
func ix(r, c uint32) idx { return idx{Row: r, Col: c} }

// mustCSR allocates a float64/uint32 CSR or fails the test.
func mustCSR(t testing.TB, rows, cols int, opts ...matrix.Option) *matrix.CSR[float64, uint32] {
	t.Helper()
	c, err := matrix.NewCSR[float64, uint32](rows, cols, opts...)
	if err != nil {
		t.Fatalf("NewCSR(%d,%d): %v", rows, cols, err)
	}

	return c
}

// mustDIA allocates a float64/uint32 DIA or fails the test.
func mustDIA(t testing.TB, rows, cols int, opts ...matrix.Option) *matrix.DIA[float64, uint32] {
	t.Helper()
	d, err := matrix.NewDIA[float64, uint32](rows, cols, opts...)
	if err != nil {
		t.Fatalf("NewDIA(%d,%d): %v", rows, cols, err)
	}

	return d
}

// backendCase names one storage format under test.
type backendCase struct {
	name string
	make func(t testing.TB, rows, cols int, opts ...matrix.Option) matrix.Backend[float64, uint32]
}

// backendCases drives every contract test over both formats.
var backendCases = []backendCase{
	{
		name: "CSR",
		make: func(t testing.TB, rows, cols int, opts ...matrix.Option) matrix.Backend[float64, uint32] {
			return mustCSR(t, rows, cols, opts...)
		},
	},
	{
		name: "DIA",
		make: func(t testing.TB, rows, cols int, opts ...matrix.Option) matrix.Backend[float64, uint32] {
			return mustDIA(t, rows, cols, opts...)
		},
	},
}

// randomTuples returns k tuples inside rows×cols with a fixed seed.
// Coordinates may repeat.
func randomTuples(seed int64, rows, cols, k int) []tup {
	rng := rand.New(rand.NewSource(seed))
	out := make([]tup, k)
	for i := range out {
		out[i] = tp(float64(rng.Intn(1000)), uint32(rng.Intn(rows)), uint32(rng.Intn(cols)))
	}

	return out
}

// sortedTuples snapshots b and sorts it by (row, col) so formats compare
// order-independently.
func sortedTuples(b matrix.Backend[float64, uint32]) []tup {
	out := b.Tuples()
	slices.SortFunc(out, func(a, b tup) int { return matrix.Compare(a.Index(), b.Index()) })

	return out
}

// model applies tuples to a map the way InsertOrAssign would.
func model(tuples []tup) map[idx]float64 {
	m := make(map[idx]float64, len(tuples))
	for _, t := range tuples {
		m[t.Index()] = t.Value
	}

	return m
}

// traversed walks b with its cursor and records every coordinate once.
// It fails the test on a repeated coordinate.
func traversed(t *testing.T, b matrix.Backend[float64, uint32]) map[idx]float64 {
	t.Helper()
	out := make(map[idx]float64, b.NNZ())
	for it := b.Cursor(); !it.Done(); it.Next() {
		r := it.Ref()
		if _, dup := out[r.Index()]; dup {
			t.Fatalf("coordinate %v yielded twice", r.Index())
		}
		out[r.Index()] = r.Value()
	}

	return out
}
