// SPDX-License-Identifier: MIT

package matrix

// DIAIterator is a two-level forward cursor over the occupied slots of a DIA.
//   - cur is the outer cursor (a diagonal bucket, nil at End).
//   - slot is the inner cursor inside cur.
//
// Unoccupied slots are skipped, and so are allocated diagonals with no
// occupied slot. Copying the value saves a position.
//
// Read accessors take value receivers, so d.Begin().Done() chains; Next
// needs an addressable iterator.
type DIAIterator[T any, I Coord] struct {
	d    *DIA[T, I]
	cur  *diagonal[T]
	slot int
	gen  uint64
}

var _ Iterator[float64, uint32] = (*DIAIterator[float64, uint32])(nil)

// Begin returns an iterator at the first occupied slot (End if empty).
func (d *DIA[T, I]) Begin() DIAIterator[T, I] {
	it := DIAIterator[T, I]{d: d, gen: d.gen}
	if first, ok := d.diags.Min(); ok {
		it.cur = first
		it.settle()
	}

	return it
}

// End returns the past-the-end iterator: outer cursor exhausted, no slot.
func (d *DIA[T, I]) End() DIAIterator[T, I] {
	return DIAIterator[T, I]{d: d, gen: d.gen}
}

// settle moves forward from (cur, slot) to the next occupied slot,
// crossing into later diagonals as needed.
func (it *DIAIterator[T, I]) settle() {
	for it.cur != nil {
		if it.cur.count > 0 {
			occ := it.cur.occupied
			for it.slot < len(occ) && !occ[it.slot] {
				it.slot++
			}
			if it.slot < len(occ) {
				return
			}
		}
		it.cur = it.d.after(it.cur.id)
		it.slot = 0
	}
	it.slot = 0
}

func (it DIAIterator[T, I]) check() {
	if it.d.opts.debugChecks && it.gen != it.d.gen {
		panic(panicStaleIterator)
	}
}

// Done reports whether the iterator is at End.
func (it DIAIterator[T, I]) Done() bool { return it.cur == nil }

// Next advances to the next occupied slot. Next at End is a no-op.
func (it *DIAIterator[T, I]) Next() {
	if it.Done() {
		return
	}
	it.check()
	it.slot++
	it.settle()
}

// Ref dereferences the iterator, recovering (row, col) from (diagonal, slot).
// Panics at End.
func (it DIAIterator[T, I]) Ref() Ref[T, I] {
	if it.Done() {
		panic(panicIteratorExhausted)
	}
	it.check()

	return Ref[T, I]{
		idx: it.d.coordOf(it.cur.id, it.slot),
		val: &it.cur.values[it.slot],
	}
}

// Diagonal reports the current diagonal id (-1 at End).
func (it DIAIterator[T, I]) Diagonal() int {
	if it.cur == nil {
		return -1
	}

	return it.cur.id
}

// Slot reports the current position along the diagonal (0 at End).
func (it DIAIterator[T, I]) Slot() int { return it.slot }

// Equal is positional: same backend, same diagonal, same slot.
func (it DIAIterator[T, I]) Equal(o DIAIterator[T, I]) bool {
	return it.d == o.d && it.cur == o.cur && it.slot == o.slot
}
