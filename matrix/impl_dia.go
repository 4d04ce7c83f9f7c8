// SPDX-License-Identifier: MIT

// Package matrix - DIA (diagonal) backend.
//
// Purpose:
//   - Index occupied entries by diagonal id and by position along that
//     diagonal, for matrices whose nonzeros cluster along diagonals.
//   - Allocate one (values, occupancy) buffer pair per populated diagonal,
//     lazily, on the first insertion that targets it.
//
// Addressing (bijective over [0,m) x [0,n)):
//
//	id   = (j - i) + (m - 1)          ids run 0 .. m+n-2
//	slot = min(i, j)
//	k    = id - (m - 1)               the signed offset j - i
//	k >= 0: i = slot,     j = slot + k,  len = min(m, n-k)
//	k <  0: i = slot - k, j = slot,      len = min(m+k, n)
//
// Buffers are sized to the diagonal's full length regardless of which slot
// triggered allocation, and are never resized or shrunk.
//
// Storage:
//   - Diagonals live in a B-tree keyed by id (github.com/google/btree), so
//     traversal is in ascending id order and insertion is O(log D).
//
// Complexity quicksheet:
//   - Insert/InsertOrAssign/Find/Lookup: O(log D); first touch of a diagonal
//     adds O(len) zeroing.
//   - Full traversal: O(sum of allocated diagonal lengths + D log D).

package matrix

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/btree"
)

// diaDegree is the B-tree branching degree for the diagonal map.
const diaDegree = 8

// diagonal is one lazily allocated diagonal bucket.
type diagonal[T any] struct {
	id       int
	values   []T
	occupied []bool
	count    int // set bits in occupied
}

func lessDiagonal[T any](a, b *diagonal[T]) bool { return a.id < b.id }

func newDiagonalTree[T any]() *btree.BTreeG[*diagonal[T]] {
	return btree.NewG(diaDegree, lessDiagonal[T])
}

// DIA is a diagonal-format backend with value type T and coordinate type I.
//   - m, n hold the shape, fixed at construction.
//   - diags maps diagonal id to its bucket, ordered by id.
//   - held is the byte count currently reserved on opts.resource.
//   - gen increments whenever a diagonal is allocated or storage is rebuilt.
type DIA[T any, I Coord] struct {
	m, n  int
	nnz   int
	diags *btree.BTreeG[*diagonal[T]]
	opts  Options
	held  int64
	gen   uint64
}

var _ Backend[float64, uint32] = (*DIA[float64, uint32])(nil)

// diagonalFootprint returns the bytes held by one bucket of length l.
func diagonalFootprint[T any](l int) int64 {
	return sizeOf[T](l) + sizeOf[bool](l)
}

// diagonalLen returns the true length of diagonal id in an m×n shape, or 0
// when id is outside 0 .. m+n-2.
func diagonalLen(m, n, id int) int {
	if m == 0 || n == 0 || id < 0 || id > m+n-2 {
		return 0
	}
	k := id - (m - 1)
	if k >= 0 {
		return min(m, n-k)
	}

	return min(m+k, n)
}

// NewDIA creates an empty rows×cols DIA backend. No diagonal is allocated.
//
// Errors:
//   - ErrBadShape when rows/cols are negative or overflow I.
//
// Complexity: O(1).
func NewDIA[T any, I Coord](rows, cols int, opts ...Option) (*DIA[T, I], error) {
	if err := ValidateShape[I](rows, cols); err != nil {
		return nil, matrixErrorf("NewDIA", err)
	}

	return &DIA[T, I]{
		m:     rows,
		n:     cols,
		diags: newDiagonalTree[T](),
		opts:  gatherOptions(opts...),
	}, nil
}

// NewDIAFromImport creates a DIA from an import description and bulk loads
// its tuples with AssignTuples.
func NewDIAFromImport[T any, I Coord](desc ImportDescription[T, I], opts ...Option) (*DIA[T, I], error) {
	d, err := NewDIA[T, I](desc.Rows, desc.Cols, opts...)
	if err != nil {
		return nil, err
	}
	if err = d.AssignTuples(desc.Tuples); err != nil {
		return nil, err
	}

	return d, nil
}

// Rows returns m. Complexity: O(1).
func (d *DIA[T, I]) Rows() int { return d.m }

// Cols returns n. Complexity: O(1).
func (d *DIA[T, I]) Cols() int { return d.n }

// Shape packs Rows() and Cols(). Complexity: O(1).
func (d *DIA[T, I]) Shape() (rows, cols int) { return d.m, d.n }

// NNZ returns the number of occupied slots. Complexity: O(1).
func (d *DIA[T, I]) NNZ() int { return d.nnz }

// Size is an alias of NNZ.
func (d *DIA[T, I]) Size() int { return d.nnz }

// Held reports the bytes this backend has reserved on its resource.
func (d *DIA[T, I]) Held() int64 { return d.held }

// Resource returns the memory resource threaded through construction.
func (d *DIA[T, I]) Resource() Resource { return d.opts.resource }

// locate maps an in-range coordinate to (diagonal id, slot).
func (d *DIA[T, I]) locate(row, col I) (id, slot int) {
	i, j := int(row), int(col)

	return (j - i) + d.m - 1, min(i, j)
}

// coordOf inverts locate.
func (d *DIA[T, I]) coordOf(id, slot int) Index[I] {
	k := id - (d.m - 1)
	if k >= 0 {
		return Index[I]{Row: I(slot), Col: I(slot + k)}
	}

	return Index[I]{Row: I(slot - k), Col: I(slot)}
}

// bucket returns the diagonal with the given id, if allocated.
func (d *DIA[T, I]) bucket(id int) (*diagonal[T], bool) {
	return d.diags.Get(&diagonal[T]{id: id})
}

// after returns the first allocated diagonal with an id greater than id.
func (d *DIA[T, I]) after(id int) *diagonal[T] {
	var next *diagonal[T]
	d.diags.AscendGreaterOrEqual(&diagonal[T]{id: id + 1}, func(x *diagonal[T]) bool {
		next = x

		return false
	})

	return next
}

// checkSlot panics (debug checks only) when slot falls outside the bucket.
func (d *DIA[T, I]) checkSlot(dg *diagonal[T], slot int) {
	if d.opts.debugChecks && (slot < 0 || slot >= len(dg.values)) {
		panic(panicSlotOutOfBuffer)
	}
}

// ensure returns the bucket and slot for (row, col), allocating the bucket
// at its full diagonal length on first touch.
//
// Errors: ErrCapacity (nothing allocated).
func (d *DIA[T, I]) ensure(method string, row, col I) (*diagonal[T], int, error) {
	id, slot := d.locate(row, col)
	dg, ok := d.bucket(id)
	if !ok {
		l := diagonalLen(d.m, d.n, id)
		need := diagonalFootprint[T](l)
		if err := d.opts.resource.Acquire(need); err != nil {
			d.opts.refused("DIA."+method, need, err)
			return nil, 0, diaErrorf(method, uint64(row), uint64(col), err)
		}
		dg = &diagonal[T]{id: id, values: make([]T, l), occupied: make([]bool, l)}
		d.diags.ReplaceOrInsert(dg)
		d.held += need
		d.gen++
		d.opts.debug("matrix: diagonal allocated", "id", id, "len", l, "bytes", need)
	}
	d.checkSlot(dg, slot)

	return dg, slot, nil
}

// occupy writes v into a free slot and updates the counters.
func (d *DIA[T, I]) occupy(dg *diagonal[T], slot int, v T) {
	dg.values[slot] = v
	dg.occupied[slot] = true
	dg.count++
	d.nnz++
}

// Insert adds e if its slot is free.
// MAIN DESCRIPTION:
//   - Address (diagonal, slot); allocate the diagonal lazily; write only
//     when the occupancy bit is clear.
//
// Returns:
//   - true when newly inserted; false when already present (value kept).
//
// Errors:
//   - ErrOutOfRange (nothing changed), ErrCapacity (nothing changed).
//
// Complexity:
//   - O(log D), plus O(len) zeroing when the diagonal is new.
func (d *DIA[T, I]) Insert(e Entry[T, I]) (bool, error) {
	if d == nil {
		return false, ErrNilMatrix
	}
	row, col := e.Index.Row, e.Index.Col
	if !inShape(d.m, d.n, row, col) {
		return false, diaErrorf(ctxInsert, uint64(row), uint64(col), ErrOutOfRange)
	}
	dg, slot, err := d.ensure(ctxInsert, row, col)
	if err != nil {
		return false, err
	}
	if dg.occupied[slot] {
		return false, nil
	}
	d.occupy(dg, slot, e.Value)

	return true, nil
}

// InsertOrAssign always writes v at idx.
// Returns true when the slot was newly occupied, false when overwritten.
//
// Errors: ErrOutOfRange, ErrCapacity.
func (d *DIA[T, I]) InsertOrAssign(idx Index[I], v T) (bool, error) {
	if d == nil {
		return false, ErrNilMatrix
	}
	if !inShape(d.m, d.n, idx.Row, idx.Col) {
		return false, diaErrorf(ctxInsertOrAssign, uint64(idx.Row), uint64(idx.Col), ErrOutOfRange)
	}
	dg, slot, err := d.ensure(ctxInsertOrAssign, idx.Row, idx.Col)
	if err != nil {
		return false, err
	}
	if dg.occupied[slot] {
		dg.values[slot] = v

		return false, nil
	}
	d.occupy(dg, slot, v)

	return true, nil
}

// missingFootprint sums the bytes needed for diagonals the batch touches
// that are not allocated in tree.
func (d *DIA[T, I]) missingFootprint(tree *btree.BTreeG[*diagonal[T]], batch []Tuple[T, I]) int64 {
	seen := make(map[int]struct{})
	var need int64
	for _, t := range batch {
		id, _ := d.locate(t.Row, t.Col)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := tree.Get(&diagonal[T]{id: id}); !ok {
			need += diagonalFootprint[T](diagonalLen(d.m, d.n, id))
		}
	}

	return need
}

// place applies one compacted tuple to tree, allocating the bucket if
// needed (bytes were reserved by the caller). It reports whether a new slot
// was occupied.
func (d *DIA[T, I]) place(tree *btree.BTreeG[*diagonal[T]], t Tuple[T, I], overwrite bool) bool {
	id, slot := d.locate(t.Row, t.Col)
	dg, ok := tree.Get(&diagonal[T]{id: id})
	if !ok {
		l := diagonalLen(d.m, d.n, id)
		dg = &diagonal[T]{id: id, values: make([]T, l), occupied: make([]bool, l)}
		tree.ReplaceOrInsert(dg)
	}
	d.checkSlot(dg, slot)
	if dg.occupied[slot] {
		if overwrite {
			dg.values[slot] = t.Value
		}

		return false
	}
	dg.values[slot] = t.Value
	dg.occupied[slot] = true
	dg.count++

	return true
}

// AssignTuples replaces all contents with the given unordered tuples.
// MAIN DESCRIPTION:
//   - Validate, compact with the duplicate policy, build a fresh diagonal
//     tree off to the side, then swap it in.
//
// Errors:
//   - ErrOutOfRange, ErrCapacity; on either nothing changes.
//
// Complexity:
//   - Time O(k log k + sum of touched diagonal lengths).
func (d *DIA[T, I]) AssignTuples(tuples []Tuple[T, I]) error {
	if d == nil {
		return ErrNilMatrix
	}
	if k, err := ValidateTuples(d.m, d.n, tuples); err != nil {
		return diaErrorf(ctxAssignTuples, uint64(tuples[k].Row), uint64(tuples[k].Col), err)
	}
	batch := compactTuples(tuples, d.opts.duplicates)

	tree := newDiagonalTree[T]()
	need := d.missingFootprint(tree, batch)
	if err := d.opts.resource.Acquire(need); err != nil {
		d.opts.refused("DIA."+ctxAssignTuples, need, err)
		return matrixErrorf("DIA."+ctxAssignTuples, err)
	}
	for _, t := range batch {
		d.place(tree, t, true)
	}

	old := d.held
	d.diags = tree
	d.nnz = len(batch)
	d.held = need
	d.gen++
	d.opts.resource.Release(old)
	d.opts.debug("matrix: dia rebuilt", "diagonals", tree.Len(), "nnz", d.nnz, "bytes", need)

	return nil
}

// InsertTuples merges the given unordered tuples into existing contents.
//
// Behavior highlights:
//   - In-batch duplicates follow the duplicate policy; already occupied
//     slots follow the conflict policy (Overwrite by default).
//   - All new diagonals are reserved in one Acquire before any write.
//
// Errors:
//   - ErrOutOfRange, ErrCapacity; on either nothing changes.
func (d *DIA[T, I]) InsertTuples(tuples []Tuple[T, I]) error {
	if d == nil {
		return ErrNilMatrix
	}
	if k, err := ValidateTuples(d.m, d.n, tuples); err != nil {
		return diaErrorf(ctxInsertTuples, uint64(tuples[k].Row), uint64(tuples[k].Col), err)
	}
	batch := compactTuples(tuples, d.opts.duplicates)
	if len(batch) == 0 {
		return nil
	}

	need := d.missingFootprint(d.diags, batch)
	if need > 0 {
		if err := d.opts.resource.Acquire(need); err != nil {
			d.opts.refused("DIA."+ctxInsertTuples, need, err)
			return matrixErrorf("DIA."+ctxInsertTuples, err)
		}
		d.held += need
		d.gen++
	}
	overwrite := d.opts.conflicts == Overwrite
	for _, t := range batch {
		if d.place(d.diags, t, overwrite) {
			d.nnz++
		}
	}

	return nil
}

// Find returns an iterator positioned at idx, or End() on a miss
// (including out-of-range coordinates).
// Complexity: O(log D).
func (d *DIA[T, I]) Find(idx Index[I]) DIAIterator[T, I] {
	if !inShape(d.m, d.n, idx.Row, idx.Col) {
		return d.End()
	}
	id, slot := d.locate(idx.Row, idx.Col)
	dg, ok := d.bucket(id)
	if !ok {
		return d.End()
	}
	d.checkSlot(dg, slot)
	if !dg.occupied[slot] {
		return d.End()
	}

	return DIAIterator[T, I]{d: d, cur: dg, slot: slot, gen: d.gen}
}

// Lookup returns the value stored at idx and whether it is occupied.
func (d *DIA[T, I]) Lookup(idx Index[I]) (T, bool) {
	var zero T
	if !inShape(d.m, d.n, idx.Row, idx.Col) {
		return zero, false
	}
	id, slot := d.locate(idx.Row, idx.Col)
	dg, ok := d.bucket(id)
	if !ok {
		return zero, false
	}
	d.checkSlot(dg, slot)
	if !dg.occupied[slot] {
		return zero, false
	}

	return dg.values[slot], true
}

// Diagonals returns the ids of allocated diagonals in ascending order,
// including diagonals with no occupied slot.
func (d *DIA[T, I]) Diagonals() []int {
	ids := make([]int, 0, d.diags.Len())
	d.diags.Ascend(func(x *diagonal[T]) bool {
		ids = append(ids, x.id)

		return true
	})

	return ids
}

// DiagonalLen returns the full length of diagonal id for this shape, or 0
// for an id outside 0 .. m+n-2.
func (d *DIA[T, I]) DiagonalLen(id int) int { return diagonalLen(d.m, d.n, id) }

// DiagonalOf returns the (diagonal id, slot) address of an in-range idx.
func (d *DIA[T, I]) DiagonalOf(idx Index[I]) (id, slot int, err error) {
	if !inShape(d.m, d.n, idx.Row, idx.Col) {
		return 0, 0, diaErrorf("DiagonalOf", uint64(idx.Row), uint64(idx.Col), ErrOutOfRange)
	}
	id, slot = d.locate(idx.Row, idx.Col)

	return id, slot, nil
}

// Tuples snapshots contents in (diagonal, slot) order.
func (d *DIA[T, I]) Tuples() []Tuple[T, I] {
	out := make([]Tuple[T, I], 0, d.nnz)
	for r := range d.All() {
		out = append(out, r.Tuple())
	}

	return out
}

// Clone returns a deep copy reserving its storage on the same resource.
// Errors: ErrCapacity.
func (d *DIA[T, I]) Clone() (*DIA[T, I], error) {
	if err := d.opts.resource.Acquire(d.held); err != nil {
		d.opts.refused("DIA.Clone", d.held, err)
		return nil, matrixErrorf("DIA.Clone", err)
	}
	tree := newDiagonalTree[T]()
	d.diags.Ascend(func(x *diagonal[T]) bool {
		tree.ReplaceOrInsert(&diagonal[T]{
			id:       x.id,
			values:   slices.Clone(x.values),
			occupied: slices.Clone(x.occupied),
			count:    x.count,
		})

		return true
	})

	return &DIA[T, I]{m: d.m, n: d.n, nnz: d.nnz, diags: tree, opts: d.opts, held: d.held}, nil
}

// Reset drops every diagonal, keeping the shape, and returns all bytes to
// the resource. Iterators are invalidated.
func (d *DIA[T, I]) Reset() {
	d.opts.resource.Release(d.held)
	d.diags = newDiagonalTree[T]()
	d.nnz = 0
	d.held = 0
	d.gen++
}

// CheckInvariants verifies bucket lengths, occupancy counts and nnz.
// Errors: ErrInvariant (wrapped with the failing diagonal).
// Complexity: O(sum of allocated diagonal lengths).
func (d *DIA[T, I]) CheckInvariants() error {
	var err error
	total := 0
	d.diags.Ascend(func(x *diagonal[T]) bool {
		l := diagonalLen(d.m, d.n, x.id)
		if l == 0 || len(x.values) != l || len(x.occupied) != l {
			err = fmt.Errorf("DIA.CheckInvariants: diagonal %d: buffer length: %w", x.id, ErrInvariant)

			return false
		}
		bits := 0
		for _, b := range x.occupied {
			if b {
				bits++
			}
		}
		if bits != x.count {
			err = fmt.Errorf("DIA.CheckInvariants: diagonal %d: occupancy count: %w", x.id, ErrInvariant)

			return false
		}
		total += bits

		return true
	})
	if err != nil {
		return err
	}
	if total != d.nnz {
		return fmt.Errorf("DIA.CheckInvariants: nnz: %w", ErrInvariant)
	}

	return nil
}

// All ranges over occupied entries in (diagonal, slot) order.
// Structural mutation inside the loop body invalidates the sequence.
func (d *DIA[T, I]) All() iter.Seq[Ref[T, I]] {
	return func(yield func(Ref[T, I]) bool) {
		for it := d.Begin(); !it.Done(); it.Next() {
			if !yield(it.Ref()) {
				return
			}
		}
	}
}

// Cursor returns Begin() behind the Iterator interface.
func (d *DIA[T, I]) Cursor() Iterator[T, I] {
	it := d.Begin()

	return &it
}
