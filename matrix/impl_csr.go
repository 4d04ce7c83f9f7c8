// SPDX-License-Identifier: MIT

// Package matrix - CSR (compressed sparse row) backend.
//
// Purpose:
//   - Store occupied entries in three parallel slices: rowptr (len m+1),
//     colind and values (len nnz), sorted by (row, col).
//   - O(1) row-start lookup, O(log rowlen) point lookup.
//   - Bulk load from unordered tuples via stable sort + compaction.
//
// Invariants (checked by CheckInvariants):
//   - rowptr[0] == 0, rowptr is non-decreasing, rowptr[m] == nnz.
//   - colind is strictly increasing inside every [rowptr[r], rowptr[r+1]).
//
// Reallocation policy:
//   - CSR has no spare capacity. Every structural change (AssignTuples,
//     InsertTuples, Insert/InsertOrAssign of a new coordinate) builds fresh
//     slices and bumps the generation, invalidating outstanding iterators.
//   - Overwriting an existing coordinate is done in place and does not
//     invalidate anything.
//
// Complexity quicksheet:
//   - AssignTuples: O(k log k); InsertTuples: O(k log k + nnz + m);
//     Find/Lookup: O(log rowlen); point insert of a new coordinate: O(nnz + m).

package matrix

import (
	"fmt"
	"iter"
	"slices"
)

// ---------- error context tags ----------

const (
	ctxAssignTuples   = "AssignTuples"
	ctxInsertTuples   = "InsertTuples"
	ctxInsert         = "Insert"
	ctxInsertOrAssign = "InsertOrAssign"
)

// CSR is a compressed-sparse-row backend with value type T and coordinate
// type I.
//   - m, n hold the shape, fixed at construction.
//   - rowptr[r] is the start offset of row r in colind/values.
//   - held is the byte count currently reserved on opts.resource.
//   - gen increments on every reallocation.
type CSR[T any, I Coord] struct {
	m, n   int
	rowptr []int
	colind []I
	values []T
	opts   Options
	held   int64
	gen    uint64
}

// Compile-time assertion for the shared backend contract.
var _ Backend[float64, uint32] = (*CSR[float64, uint32])(nil)

// csrFootprint returns the bytes held by a CSR with the given row count and nnz.
func csrFootprint[T any, I Coord](rows, nnz int) int64 {
	return sizeOf[int](rows+1) + sizeOf[I](nnz) + sizeOf[T](nnz)
}

// NewCSR creates an empty rows×cols CSR backend.
// MAIN DESCRIPTION:
//   - Validate the shape against I, resolve options, reserve rowptr storage.
//
// Errors:
//   - ErrBadShape when rows/cols are negative or overflow I.
//   - ErrCapacity when the resource refuses the rowptr allocation.
//
// Complexity:
//   - Time O(m), Space O(m).
func NewCSR[T any, I Coord](rows, cols int, opts ...Option) (*CSR[T, I], error) {
	if err := ValidateShape[I](rows, cols); err != nil {
		return nil, matrixErrorf("NewCSR", err)
	}
	o := gatherOptions(opts...)
	need := csrFootprint[T, I](rows, 0)
	if err := o.resource.Acquire(need); err != nil {
		o.refused("NewCSR", need, err)
		return nil, matrixErrorf("NewCSR", err)
	}

	return &CSR[T, I]{
		m:      rows,
		n:      cols,
		rowptr: make([]int, rows+1),
		opts:   o,
		held:   need,
	}, nil
}

// NewCSRFromImport creates a CSR from an import description and bulk loads
// its tuples with AssignTuples. On failure nothing stays reserved.
func NewCSRFromImport[T any, I Coord](desc ImportDescription[T, I], opts ...Option) (*CSR[T, I], error) {
	c, err := NewCSR[T, I](desc.Rows, desc.Cols, opts...)
	if err != nil {
		return nil, err
	}
	if err = c.AssignTuples(desc.Tuples); err != nil {
		c.opts.resource.Release(c.held)
		return nil, err
	}

	return c, nil
}

// Rows returns m. Complexity: O(1).
func (c *CSR[T, I]) Rows() int { return c.m }

// Cols returns n. Complexity: O(1).
func (c *CSR[T, I]) Cols() int { return c.n }

// Shape packs Rows() and Cols(). Complexity: O(1).
func (c *CSR[T, I]) Shape() (rows, cols int) { return c.m, c.n }

// NNZ returns the number of occupied entries. Complexity: O(1).
func (c *CSR[T, I]) NNZ() int { return len(c.values) }

// Size is an alias of NNZ.
func (c *CSR[T, I]) Size() int { return len(c.values) }

// Held reports the bytes this backend has reserved on its resource.
func (c *CSR[T, I]) Held() int64 { return c.held }

// Resource returns the memory resource threaded through construction.
func (c *CSR[T, I]) Resource() Resource { return c.opts.resource }

// commit swaps in freshly built slices that were reserved as need bytes.
// The previous reservation is released after the swap.
func (c *CSR[T, I]) commit(rowptr []int, colind []I, values []T, need int64) {
	old := c.held
	c.rowptr, c.colind, c.values = rowptr, colind, values
	c.held = need
	c.gen++
	c.opts.resource.Release(old)
	c.opts.debug("matrix: csr reallocated", "rows", c.m, "nnz", len(values), "bytes", need)
}

// search locates col inside row. It returns the absolute offset where col
// is (found) or would be inserted (not found).
func (c *CSR[T, I]) search(row int, col I) (int, bool) {
	lo, hi := c.rowptr[row], c.rowptr[row+1]
	pos, found := slices.BinarySearch(c.colind[lo:hi], col)

	return lo + pos, found
}

// AssignTuples replaces all contents with the given unordered tuples.
// MAIN DESCRIPTION:
//   - Validate every coordinate, compact the batch, rebuild all three slices.
//
// Implementation:
//   - Stage 1: ValidateTuples; the first offender aborts the whole batch.
//   - Stage 2: compactTuples (stable sort + duplicate policy).
//   - Stage 3: reserve new storage, count per row, prefix-sum into rowptr.
//   - Stage 4: write colind/values in sorted order and commit.
//
// Behavior highlights:
//   - Duplicate coordinates: last-wins by default, first-wins with
//     WithFirstWins. Input order decides "first" and "last".
//   - The input slice is not modified.
//   - Old and new storage are reserved together until commit, so a bounded
//     resource must fit both.
//
// Errors:
//   - ErrOutOfRange (nothing changed), ErrCapacity (nothing changed).
//
// Complexity:
//   - Time O(k log k + m), Space O(k + m).
func (c *CSR[T, I]) AssignTuples(tuples []Tuple[T, I]) error {
	if c == nil {
		return ErrNilMatrix
	}
	if k, err := ValidateTuples(c.m, c.n, tuples); err != nil {
		return csrErrorf(ctxAssignTuples, uint64(tuples[k].Row), uint64(tuples[k].Col), err)
	}
	sorted := compactTuples(tuples, c.opts.duplicates)

	need := csrFootprint[T, I](c.m, len(sorted))
	if err := c.opts.resource.Acquire(need); err != nil {
		c.opts.refused("CSR."+ctxAssignTuples, need, err)
		return matrixErrorf("CSR."+ctxAssignTuples, err)
	}

	rowptr := make([]int, c.m+1)
	colind := make([]I, len(sorted))
	values := make([]T, len(sorted))
	for _, t := range sorted {
		rowptr[int(t.Row)+1]++
	}
	for r := 0; r < c.m; r++ {
		rowptr[r+1] += rowptr[r]
	}
	for k, t := range sorted {
		colind[k] = t.Col
		values[k] = t.Value
	}
	c.commit(rowptr, colind, values, need)

	return nil
}

// InsertTuples merges the given unordered tuples into existing contents.
// MAIN DESCRIPTION:
//   - Validate, compact the batch, count genuinely new coordinates, then
//     run a per-row two-pointer merge into freshly reserved slices.
//
// Behavior highlights:
//   - In-batch duplicates follow the duplicate policy.
//   - A batch coordinate that is already occupied follows the conflict
//     policy: Overwrite (default) or KeepExisting.
//   - An empty batch is a no-op and does not invalidate iterators.
//
// Errors:
//   - ErrOutOfRange, ErrCapacity; on either nothing changes.
//
// Complexity:
//   - Time O(k log k + nnz + m), Space O(nnz + k + m).
func (c *CSR[T, I]) InsertTuples(tuples []Tuple[T, I]) error {
	if c == nil {
		return ErrNilMatrix
	}
	if k, err := ValidateTuples(c.m, c.n, tuples); err != nil {
		return csrErrorf(ctxInsertTuples, uint64(tuples[k].Row), uint64(tuples[k].Col), err)
	}
	batch := compactTuples(tuples, c.opts.duplicates)
	if len(batch) == 0 {
		return nil
	}

	fresh := 0
	for _, t := range batch {
		if _, ok := c.search(int(t.Row), t.Col); !ok {
			fresh++
		}
	}
	nnz := len(c.values) + fresh
	need := csrFootprint[T, I](c.m, nnz)
	if err := c.opts.resource.Acquire(need); err != nil {
		c.opts.refused("CSR."+ctxInsertTuples, need, err)
		return matrixErrorf("CSR."+ctxInsertTuples, err)
	}

	rowptr := make([]int, c.m+1)
	colind := make([]I, 0, nnz)
	values := make([]T, 0, nnz)
	p := 0
	for r := 0; r < c.m; r++ {
		lo, hi := c.rowptr[r], c.rowptr[r+1]
		for lo < hi || (p < len(batch) && int(batch[p].Row) == r) {
			switch {
			case p >= len(batch) || int(batch[p].Row) != r || (lo < hi && c.colind[lo] < batch[p].Col):
				colind = append(colind, c.colind[lo])
				values = append(values, c.values[lo])
				lo++
			case lo >= hi || batch[p].Col < c.colind[lo]:
				colind = append(colind, batch[p].Col)
				values = append(values, batch[p].Value)
				p++
			default: // same coordinate
				v := c.values[lo]
				if c.opts.conflicts == Overwrite {
					v = batch[p].Value
				}
				colind = append(colind, c.colind[lo])
				values = append(values, v)
				lo++
				p++
			}
		}
		rowptr[r+1] = len(colind)
	}
	c.commit(rowptr, colind, values, need)

	return nil
}

// insertAt places a new coordinate at absolute offset pos of row.
// The caller has verified the coordinate is absent.
func (c *CSR[T, I]) insertAt(method string, row, pos int, col I, v T) error {
	nnz := len(c.values) + 1
	need := csrFootprint[T, I](c.m, nnz)
	if err := c.opts.resource.Acquire(need); err != nil {
		c.opts.refused("CSR."+method, need, err)
		return csrErrorf(method, uint64(row), uint64(col), err)
	}

	colind := make([]I, nnz)
	copy(colind, c.colind[:pos])
	colind[pos] = col
	copy(colind[pos+1:], c.colind[pos:])

	values := make([]T, nnz)
	copy(values, c.values[:pos])
	values[pos] = v
	copy(values[pos+1:], c.values[pos:])

	rowptr := slices.Clone(c.rowptr)
	for r := row + 1; r <= c.m; r++ {
		rowptr[r]++
	}
	c.commit(rowptr, colind, values, need)

	return nil
}

// Insert adds e if its coordinate is free.
// Returns true when newly inserted, false when the coordinate was already
// occupied (stored value untouched, no reallocation).
//
// Errors: ErrOutOfRange, ErrCapacity.
// Complexity: O(log rowlen) on hit; O(nnz + m) on a new coordinate.
func (c *CSR[T, I]) Insert(e Entry[T, I]) (bool, error) {
	if c == nil {
		return false, ErrNilMatrix
	}
	row, col := e.Index.Row, e.Index.Col
	if !inShape(c.m, c.n, row, col) {
		return false, csrErrorf(ctxInsert, uint64(row), uint64(col), ErrOutOfRange)
	}
	pos, found := c.search(int(row), col)
	if found {
		return false, nil
	}
	if err := c.insertAt(ctxInsert, int(row), pos, col, e.Value); err != nil {
		return false, err
	}

	return true, nil
}

// InsertOrAssign always stores v at idx.
// Returns true when the coordinate was newly occupied, false when an
// existing value was overwritten in place.
//
// Errors: ErrOutOfRange, ErrCapacity.
func (c *CSR[T, I]) InsertOrAssign(idx Index[I], v T) (bool, error) {
	if c == nil {
		return false, ErrNilMatrix
	}
	if !inShape(c.m, c.n, idx.Row, idx.Col) {
		return false, csrErrorf(ctxInsertOrAssign, uint64(idx.Row), uint64(idx.Col), ErrOutOfRange)
	}
	pos, found := c.search(int(idx.Row), idx.Col)
	if found {
		c.values[pos] = v

		return false, nil
	}
	if err := c.insertAt(ctxInsertOrAssign, int(idx.Row), pos, idx.Col, v); err != nil {
		return false, err
	}

	return true, nil
}

// Find returns an iterator positioned at idx, or End() on a miss
// (including out-of-range coordinates).
// Complexity: O(log rowlen).
func (c *CSR[T, I]) Find(idx Index[I]) CSRIterator[T, I] {
	if !inShape(c.m, c.n, idx.Row, idx.Col) {
		return c.End()
	}
	pos, found := c.search(int(idx.Row), idx.Col)
	if !found {
		return c.End()
	}

	return CSRIterator[T, I]{c: c, row: int(idx.Row), off: pos, gen: c.gen}
}

// Lookup returns the value stored at idx and whether it is occupied.
func (c *CSR[T, I]) Lookup(idx Index[I]) (T, bool) {
	var zero T
	if !inShape(c.m, c.n, idx.Row, idx.Col) {
		return zero, false
	}
	pos, found := c.search(int(idx.Row), idx.Col)
	if !found {
		return zero, false
	}

	return c.values[pos], true
}

// RowRange returns the column indices and values of row as sub-slices of
// backend storage. Values may be written in place; the slices are
// invalidated by the next reallocation. Out-of-range rows yield nil, nil.
// Complexity: O(1).
func (c *CSR[T, I]) RowRange(row I) ([]I, []T) {
	if uint64(row) >= uint64(c.m) {
		return nil, nil
	}
	r := int(row)
	lo, hi := c.rowptr[r], c.rowptr[r+1]

	return c.colind[lo:hi:hi], c.values[lo:hi:hi]
}

// Tuples snapshots contents in (row, col) order.
func (c *CSR[T, I]) Tuples() []Tuple[T, I] {
	out := make([]Tuple[T, I], 0, len(c.values))
	for r := 0; r < c.m; r++ {
		for k := c.rowptr[r]; k < c.rowptr[r+1]; k++ {
			out = append(out, Tuple[T, I]{Value: c.values[k], Row: I(r), Col: c.colind[k]})
		}
	}

	return out
}

// Clone returns a deep copy reserving its storage on the same resource.
// Errors: ErrCapacity.
func (c *CSR[T, I]) Clone() (*CSR[T, I], error) {
	if err := c.opts.resource.Acquire(c.held); err != nil {
		c.opts.refused("CSR.Clone", c.held, err)
		return nil, matrixErrorf("CSR.Clone", err)
	}

	return &CSR[T, I]{
		m:      c.m,
		n:      c.n,
		rowptr: slices.Clone(c.rowptr),
		colind: slices.Clone(c.colind),
		values: slices.Clone(c.values),
		opts:   c.opts,
		held:   c.held,
	}, nil
}

// Reset drops every entry, keeping the shape, and returns the freed bytes
// to the resource. Iterators are invalidated.
func (c *CSR[T, I]) Reset() {
	need := csrFootprint[T, I](c.m, 0)
	c.opts.resource.Release(c.held - need)
	c.rowptr = make([]int, c.m+1)
	c.colind, c.values = nil, nil
	c.held = need
	c.gen++
}

// CheckInvariants verifies the structural CSR invariants.
// Errors: ErrInvariant (wrapped with the failing row).
// Complexity: O(m + nnz).
func (c *CSR[T, I]) CheckInvariants() error {
	if len(c.rowptr) != c.m+1 || c.rowptr[0] != 0 {
		return fmt.Errorf("CSR.CheckInvariants: rowptr head: %w", ErrInvariant)
	}
	if c.rowptr[c.m] != len(c.colind) || len(c.colind) != len(c.values) {
		return fmt.Errorf("CSR.CheckInvariants: nnz: %w", ErrInvariant)
	}
	for r := 0; r < c.m; r++ {
		lo, hi := c.rowptr[r], c.rowptr[r+1]
		if lo > hi {
			return fmt.Errorf("CSR.CheckInvariants: row %d: rowptr decreasing: %w", r, ErrInvariant)
		}
		for k := lo; k < hi; k++ {
			if uint64(c.colind[k]) >= uint64(c.n) {
				return fmt.Errorf("CSR.CheckInvariants: row %d: column out of range: %w", r, ErrInvariant)
			}
			if k > lo && c.colind[k-1] >= c.colind[k] {
				return fmt.Errorf("CSR.CheckInvariants: row %d: columns not strictly increasing: %w", r, ErrInvariant)
			}
		}
	}

	return nil
}

// All ranges over occupied entries in (row, col) order.
// Structural mutation inside the loop body invalidates the sequence.
func (c *CSR[T, I]) All() iter.Seq[Ref[T, I]] {
	return func(yield func(Ref[T, I]) bool) {
		for it := c.Begin(); !it.Done(); it.Next() {
			if !yield(it.Ref()) {
				return
			}
		}
	}
}

// Cursor returns Begin() behind the Iterator interface.
func (c *CSR[T, I]) Cursor() Iterator[T, I] {
	it := c.Begin()

	return &it
}
