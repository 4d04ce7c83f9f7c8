// SPDX-License-Identifier: MIT

package matrix

// Ref is what every backend iterator yields: a coordinate paired with a
// pointer into backend storage. Writing through Set or Ptr mutates the
// stored value in place and is visible to every later lookup or iterator
// over the same backend.
//
// A Ref is invalidated together with the iterator that produced it: after
// any reallocating insertion the pointer may reference a discarded buffer.
type Ref[T any, I Coord] struct {
	idx Index[I]
	val *T
}

// Row returns the row coordinate.
func (r Ref[T, I]) Row() I { return r.idx.Row }

// Col returns the column coordinate.
func (r Ref[T, I]) Col() I { return r.idx.Col }

// Index returns the (row, column) coordinate.
func (r Ref[T, I]) Index() Index[I] { return r.idx }

// Value returns a copy of the stored value.
func (r Ref[T, I]) Value() T { return *r.val }

// Set overwrites the stored value.
func (r Ref[T, I]) Set(v T) { *r.val = v }

// Ptr exposes the stored value for in-place updates (e.g. *p += x).
func (r Ref[T, I]) Ptr() *T { return r.val }

// Entry snapshots the reference as a detached Entry.
func (r Ref[T, I]) Entry() Entry[T, I] { return Entry[T, I]{Index: r.idx, Value: *r.val} }

// Tuple snapshots the reference in import order (value, row, col).
func (r Ref[T, I]) Tuple() Tuple[T, I] {
	return Tuple[T, I]{Value: *r.val, Row: r.idx.Row, Col: r.idx.Col}
}
