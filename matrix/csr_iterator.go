// SPDX-License-Identifier: MIT

package matrix

// CSRIterator is a forward cursor over the occupied entries of a CSR.
// It is a small value: copying it saves a position, and a saved copy
// re-traverses the same sequence as long as the backend is not mutated.
//
// State is (row, off): off indexes colind/values, row is the row owning off.
// Begin is (0, rowptr[0]) settled past empty rows; End is (m, rowptr[m]).
//
// Read accessors take value receivers, so c.Find(idx).Ref() chains; Next
// needs an addressable iterator.
type CSRIterator[T any, I Coord] struct {
	c   *CSR[T, I]
	row int
	off int
	gen uint64
}

var _ Iterator[float64, uint32] = (*CSRIterator[float64, uint32])(nil)

// Begin returns an iterator at the first occupied entry (End if empty).
func (c *CSR[T, I]) Begin() CSRIterator[T, I] {
	it := CSRIterator[T, I]{c: c, row: 0, off: c.rowptr[0], gen: c.gen}
	it.settle()

	return it
}

// End returns the past-the-end iterator.
func (c *CSR[T, I]) End() CSRIterator[T, I] {
	return CSRIterator[T, I]{c: c, row: c.m, off: c.rowptr[c.m], gen: c.gen}
}

// settle rolls row forward until off lies inside row's range or row == m.
func (it *CSRIterator[T, I]) settle() {
	for it.row < it.c.m && it.off >= it.c.rowptr[it.row+1] {
		it.row++
	}
}

func (it CSRIterator[T, I]) check() {
	if it.c.opts.debugChecks && it.gen != it.c.gen {
		panic(panicStaleIterator)
	}
}

// Done reports whether the iterator is at End.
func (it CSRIterator[T, I]) Done() bool { return it.c == nil || it.row >= it.c.m }

// Next advances to the next occupied entry. Next at End is a no-op.
func (it *CSRIterator[T, I]) Next() {
	if it.Done() {
		return
	}
	it.check()
	it.off++
	it.settle()
}

// Ref dereferences the iterator. Panics at End.
func (it CSRIterator[T, I]) Ref() Ref[T, I] {
	if it.Done() {
		panic(panicIteratorExhausted)
	}
	it.check()

	return Ref[T, I]{
		idx: Index[I]{Row: I(it.row), Col: it.c.colind[it.off]},
		val: &it.c.values[it.off],
	}
}

// Offset reports the position in colind/values (nnz at End).
func (it CSRIterator[T, I]) Offset() int { return it.off }

// Equal is positional: same backend, same row and offset.
func (it CSRIterator[T, I]) Equal(o CSRIterator[T, I]) bool {
	return it.c == o.c && it.row == o.row && it.off == o.off
}
