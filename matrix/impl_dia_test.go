// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the DIA backend.
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/grb/matrix"
)

func ent(v float64, r, c uint32) matrix.Entry[float64, uint32] {
	return matrix.Entry[float64, uint32]{Index: ix(r, c), Value: v}
}

// TestNewDIABadShape mirrors the CSR shape checks.
func TestNewDIABadShape(t *testing.T) {
	_, err := matrix.NewDIA[float64, uint32](3, -2)
	require.ErrorIs(t, err, matrix.ErrBadShape)

	_, err = matrix.NewDIA[int, uint8](1000, 2)
	require.ErrorIs(t, err, matrix.ErrBadShape)
}

// TestDIAMainDiagonalBucket pins the 5×5 main diagonal addressing.
func TestDIAMainDiagonalBucket(t *testing.T) {
	d := mustDIA(t, 5, 5)
	for k := uint32(0); k < 3; k++ {
		ok, err := d.Insert(ent(float64(k+1), k, k))
		require.NoError(t, err)
		require.True(t, ok)

		id, slot, err := d.DiagonalOf(ix(k, k))
		require.NoError(t, err)
		require.Equal(t, 4, id)
		require.Equal(t, int(k), slot)
	}
	require.Equal(t, []int{4}, d.Diagonals())

	values, occupied, ok := matrix.DIABucket(d, 4)
	require.True(t, ok)
	require.Len(t, values, 5)
	require.Equal(t, []bool{true, true, true, false, false}, occupied)
	require.Equal(t, []float64{1, 2, 3, 0, 0}, values)
}

// TestDiagonalLen checks the per-diagonal lengths of a 3×5 shape.
func TestDiagonalLen(t *testing.T) {
	want := []int{1, 2, 3, 3, 3, 2, 1}
	sum := 0
	for id, l := range want {
		require.Equal(t, l, matrix.ExportedDiagonalLen(3, 5, id), "id %d", id)
		sum += l
	}
	require.Equal(t, 15, sum)
	require.Equal(t, 0, matrix.ExportedDiagonalLen(3, 5, -1))
	require.Equal(t, 0, matrix.ExportedDiagonalLen(3, 5, 7))
	require.Equal(t, 0, matrix.ExportedDiagonalLen(0, 5, 0))
}

// TestDIABijection addresses every coordinate of several shapes and checks
// that (diagonal, slot) is unique, in bounds, and inverts back on traversal.
func TestDIABijection(t *testing.T) {
	shapes := [][2]int{{1, 1}, {4, 4}, {3, 5}, {5, 3}, {1, 6}, {6, 1}, {7, 2}}
	for _, sh := range shapes {
		rows, cols := sh[0], sh[1]
		d := mustDIA(t, rows, cols)
		seen := make(map[[2]int]idx)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				at := ix(uint32(r), uint32(c))
				id, slot, err := d.DiagonalOf(at)
				require.NoError(t, err)
				require.Less(t, slot, d.DiagonalLen(id), "shape %v at %v", sh, at)
				prev, dup := seen[[2]int{id, slot}]
				require.False(t, dup, "shape %v: %v and %v share (%d,%d)", sh, prev, at, id, slot)
				seen[[2]int{id, slot}] = at

				_, err = d.InsertOrAssign(at, float64(r*cols+c))
				require.NoError(t, err)
			}
		}
		require.Equal(t, rows*cols, d.NNZ())
		require.Len(t, d.Diagonals(), rows+cols-1)
		require.NoError(t, d.CheckInvariants())

		count := 0
		for ref := range d.All() {
			require.Equal(t, float64(int(ref.Row())*cols+int(ref.Col())), ref.Value(), "shape %v", sh)
			count++
		}
		require.Equal(t, rows*cols, count)
	}
}

// TestDIABufferSizedToFullDiagonal inserts at the last slot first; later
// inserts at smaller slots must stay in bounds.
func TestDIABufferSizedToFullDiagonal(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		first      idx
		later      idx
		id, length int
	}{
		{name: "square-main", rows: 4, cols: 4, first: ix(3, 3), later: ix(0, 0), id: 3, length: 4},
		{name: "wide-upper", rows: 3, cols: 5, first: ix(2, 3), later: ix(0, 1), id: 3, length: 3},
		{name: "tall-lower", rows: 5, cols: 3, first: ix(4, 2), later: ix(2, 0), id: 2, length: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := mustDIA(t, tc.rows, tc.cols)
			ok, err := d.Insert(matrix.Entry[float64, uint32]{Index: tc.first, Value: 1})
			require.NoError(t, err)
			require.True(t, ok)

			values, _, found := matrix.DIABucket(d, tc.id)
			require.True(t, found)
			require.Len(t, values, tc.length)

			require.NotPanics(t, func() {
				ok, err = d.Insert(matrix.Entry[float64, uint32]{Index: tc.later, Value: 2})
			})
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, 2, d.NNZ())
			require.Equal(t, []int{tc.id}, d.Diagonals())
		})
	}
}

// TestDIATraversalOrder checks (diagonal, slot) ordering on a 3×3.
func TestDIATraversalOrder(t *testing.T) {
	d := mustDIA(t, 3, 3)
	for _, e := range []matrix.Entry[float64, uint32]{ent(1, 0, 2), ent(2, 2, 0), ent(3, 1, 1), ent(4, 0, 0)} {
		_, err := d.Insert(e)
		require.NoError(t, err)
	}

	var got []idx
	var diags []int
	for it := d.Begin(); !it.Done(); it.Next() {
		got = append(got, it.Ref().Index())
		diags = append(diags, it.Diagonal())
	}
	require.Equal(t, []idx{ix(2, 0), ix(0, 0), ix(1, 1), ix(0, 2)}, got)
	require.Equal(t, []int{0, 2, 2, 4}, diags)
	require.Equal(t, []tup{tp(2, 2, 0), tp(4, 0, 0), tp(3, 1, 1), tp(1, 0, 2)}, d.Tuples())
}

// TestDIASkipsEmptyDiagonals allocates diagonals with no occupied slot.
func TestDIASkipsEmptyDiagonals(t *testing.T) {
	d := mustDIA(t, 3, 3)
	require.NoError(t, matrix.DIAAllocate(d, 2, 0)) // id 0, leading
	require.NoError(t, matrix.DIAAllocate(d, 0, 1)) // id 3, between
	require.NoError(t, matrix.DIAAllocate(d, 0, 2)) // id 4, trailing
	_, err := d.Insert(ent(1, 1, 0))                 // id 1
	require.NoError(t, err)
	_, err = d.Insert(ent(2, 2, 2)) // id 2
	require.NoError(t, err)

	require.Equal(t, []int{0, 1, 2, 3, 4}, d.Diagonals())
	require.Equal(t, []tup{tp(1, 1, 0), tp(2, 2, 2)}, d.Tuples())
	require.Equal(t, 2, d.NNZ())

	it := d.Begin()
	it.Next()
	it.Next()
	require.True(t, it.Equal(d.End()))
	require.Equal(t, -1, it.Diagonal())

	empty := mustDIA(t, 3, 3)
	require.NoError(t, matrix.DIAAllocate(empty, 1, 1))
	require.True(t, empty.Begin().Done())
}

// TestDIAInsertSemantics covers the insert / upsert result flags.
func TestDIAInsertSemantics(t *testing.T) {
	d := mustDIA(t, 4, 4)

	ok, err := d.Insert(ent(1, 1, 2))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = d.Insert(ent(99, 1, 2))
	require.NoError(t, err)
	require.False(t, ok)
	v, _ := d.Lookup(ix(1, 2))
	require.Equal(t, 1.0, v)

	fresh, err := d.InsertOrAssign(ix(1, 2), 5)
	require.NoError(t, err)
	require.False(t, fresh)
	v, _ = d.Lookup(ix(1, 2))
	require.Equal(t, 5.0, v)

	fresh, err = d.InsertOrAssign(ix(3, 0), 6)
	require.NoError(t, err)
	require.True(t, fresh)
	require.Equal(t, 2, d.NNZ())
}

// TestDIAOutOfRange ensures out-of-shape coordinates are rejected untouched.
func TestDIAOutOfRange(t *testing.T) {
	d := mustDIA(t, 2, 3)
	_, err := d.Insert(ent(1, 2, 0))
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = d.InsertOrAssign(ix(0, 3), 1)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, _, err = d.DiagonalOf(ix(5, 5))
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.Empty(t, d.Diagonals())
	require.Equal(t, 0, d.NNZ())
	require.True(t, d.Find(ix(9, 9)).Equal(d.End()))
}

// TestDIABulkLoadPolicies exercises AssignTuples and InsertTuples policies.
func TestDIABulkLoadPolicies(t *testing.T) {
	in := []tup{tp(1, 0, 0), tp(2, 0, 0), tp(3, 1, 0)}

	last := mustDIA(t, 2, 2)
	require.NoError(t, last.AssignTuples(in))
	require.Equal(t, []tup{tp(3, 1, 0), tp(2, 0, 0)}, last.Tuples())

	first := mustDIA(t, 2, 2, matrix.WithFirstWins())
	require.NoError(t, first.AssignTuples(in))
	require.Equal(t, []tup{tp(3, 1, 0), tp(1, 0, 0)}, first.Tuples())

	require.NoError(t, last.InsertTuples([]tup{tp(7, 0, 0), tp(8, 0, 1)}))
	require.Equal(t, []tup{tp(3, 1, 0), tp(7, 0, 0), tp(8, 0, 1)}, last.Tuples())

	keep := mustDIA(t, 2, 2, matrix.WithKeepExisting())
	require.NoError(t, keep.AssignTuples(in))
	require.NoError(t, keep.InsertTuples([]tup{tp(7, 0, 0), tp(8, 0, 1)}))
	require.Equal(t, []tup{tp(3, 1, 0), tp(2, 0, 0), tp(8, 0, 1)}, keep.Tuples())
	require.Equal(t, 3, keep.NNZ())
	require.NoError(t, keep.CheckInvariants())

	err := keep.InsertTuples([]tup{tp(1, 1, 1), tp(1, 2, 1)})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.Equal(t, 3, keep.NNZ())
	_, ok := keep.Lookup(ix(1, 1))
	require.False(t, ok)
}

// TestDIAAssignTuplesReplaces ensures the old diagonals are dropped.
func TestDIAAssignTuplesReplaces(t *testing.T) {
	res := matrix.NewHeapResource()
	d := mustDIA(t, 3, 3, matrix.WithResource(res))
	require.NoError(t, d.AssignTuples([]tup{tp(1, 0, 2), tp(2, 2, 0)}))
	require.Equal(t, []int{0, 4}, d.Diagonals())

	require.NoError(t, d.AssignTuples([]tup{tp(3, 1, 1)}))
	require.Equal(t, []int{2}, d.Diagonals())
	require.Equal(t, 1, d.NNZ())
	require.Equal(t, d.Held(), res.InUse())
}

// TestDIAFind covers hit, miss and continuation from a found position.
func TestDIAFind(t *testing.T) {
	d := mustDIA(t, 3, 3)
	require.NoError(t, d.AssignTuples([]tup{tp(1, 0, 0), tp(2, 2, 2), tp(3, 0, 1)}))

	it := d.Find(ix(0, 0))
	require.False(t, it.Done())
	require.Equal(t, 0, it.Slot())
	it.Next()
	require.Equal(t, ix(2, 2), it.Ref().Index())
	it.Next()
	require.Equal(t, ix(0, 1), it.Ref().Index())
	it.Next()
	require.True(t, it.Done())

	require.True(t, d.Find(ix(1, 1)).Equal(d.End())) // allocated diagonal, empty slot
	require.True(t, d.Find(ix(1, 0)).Equal(d.End())) // unallocated diagonal
}

// TestDIACapacityIsAtomic bounds the resource to one main diagonal.
func TestDIACapacityIsAtomic(t *testing.T) {
	sample := matrix.NewHeapResource()
	p := mustDIA(t, 3, 3, matrix.WithResource(sample))
	_, err := p.Insert(ent(1, 0, 0))
	require.NoError(t, err)
	mainBytes := sample.InUse()
	require.Positive(t, mainBytes)

	res := matrix.NewBoundedResource(mainBytes)
	d := mustDIA(t, 3, 3, matrix.WithResource(res))
	_, err = d.Insert(ent(1, 1, 1))
	require.NoError(t, err)

	_, err = d.Insert(ent(2, 0, 1))
	require.ErrorIs(t, err, matrix.ErrCapacity)
	require.Equal(t, 1, d.NNZ())
	require.Equal(t, []int{2}, d.Diagonals())
	require.Equal(t, mainBytes, res.InUse())

	err = d.InsertTuples([]tup{tp(5, 1, 1), tp(6, 0, 1)})
	require.ErrorIs(t, err, matrix.ErrCapacity)
	v, _ := d.Lookup(ix(1, 1))
	require.Equal(t, 1.0, v)

	// Replacing needs old and new storage at once.
	err = d.AssignTuples([]tup{tp(9, 2, 2)})
	require.ErrorIs(t, err, matrix.ErrCapacity)
	require.Equal(t, []tup{tp(1, 1, 1)}, d.Tuples())
}

// TestDIAStaleIterator checks which mutations invalidate iterators.
func TestDIAStaleIterator(t *testing.T) {
	d := mustDIA(t, 3, 3)
	_, err := d.Insert(ent(1, 0, 0))
	require.NoError(t, err)

	it := d.Begin()
	_, err = d.Insert(ent(2, 1, 1)) // same diagonal: no allocation
	require.NoError(t, err)
	require.NotPanics(t, func() { _ = it.Ref() })

	_, err = d.Insert(ent(3, 0, 1)) // new diagonal: lazy allocation
	require.NoError(t, err)
	require.Panics(t, func() { _ = it.Ref() })
}

// TestDIASlotGuard corrupts a bucket and expects the debug guard to fire.
func TestDIASlotGuard(t *testing.T) {
	d := mustDIA(t, 3, 3)
	_, err := d.Insert(ent(1, 0, 0))
	require.NoError(t, err)
	matrix.DIATruncate(d, 2, 1)

	require.ErrorIs(t, d.CheckInvariants(), matrix.ErrInvariant)
	require.Panics(t, func() { _, _ = d.Insert(ent(2, 2, 2)) })
}

// TestDIASlotGuardOnReads expects Find and Lookup to trip the same guard.
func TestDIASlotGuardOnReads(t *testing.T) {
	d := mustDIA(t, 3, 3)
	_, err := d.Insert(ent(1, 0, 0))
	require.NoError(t, err)
	matrix.DIATruncate(d, 2, 1)

	const msg = "matrix: diagonal slot exceeds buffer length"
	require.PanicsWithValue(t, msg, func() { _, _ = d.Lookup(ix(2, 2)) })
	require.PanicsWithValue(t, msg, func() { _ = d.Find(ix(2, 2)) })

	v, ok := d.Lookup(ix(0, 0))
	require.True(t, ok)
	require.Equal(t, 1.0, v)
}

// TestDIACloneAndReset ensures Clone is deep and Reset returns storage.
func TestDIACloneAndReset(t *testing.T) {
	res := matrix.NewHeapResource()
	d := mustDIA(t, 4, 4, matrix.WithResource(res))
	require.NoError(t, d.AssignTuples([]tup{tp(1, 0, 0), tp(2, 3, 1)}))
	held := d.Held()

	cl, err := d.Clone()
	require.NoError(t, err)
	require.Equal(t, 2*held, res.InUse())

	_, err = cl.InsertOrAssign(ix(0, 0), 10)
	require.NoError(t, err)
	v, _ := d.Lookup(ix(0, 0))
	assert.Equal(t, 1.0, v)
	assert.NoError(t, cl.CheckInvariants())

	d.Reset()
	assert.Equal(t, 0, d.NNZ())
	assert.Empty(t, d.Diagonals())
	assert.Equal(t, held, res.InUse())
	assert.Equal(t, 2, cl.NNZ())
}
