// SPDX-License-Identifier: MIT
// Package matrix: shared traversal contract and format-agnostic facades.
//
// Purpose:
//   - Define the Iterator/Backend contract both CSR and DIA satisfy, so
//     printers, serializers and dispatch layers can consume either format.
//   - Provide thin facades (New, Collect, EqualContents, Convert) built only
//     on that contract; none of them reaches into backend internals.
//
// Determinism & Policy:
//   - Facades never reorder or filter entries; they observe whatever order
//     the backend iterates in (CSR: row, col; DIA: diagonal, slot).
//   - Comparisons between backends are order-independent.

package matrix

import (
	"fmt"
	"iter"
)

// Iterator is the shared forward-iterator contract.
//
//	for it := b.Cursor(); !it.Done(); it.Next() {
//		r := it.Ref()
//		r.Set(r.Value() * 2)
//	}
//
// Any reallocating insertion invalidates outstanding iterators and Refs.
type Iterator[T any, I Coord] interface {
	// Done reports whether the iterator is past the last occupied entry.
	Done() bool
	// Next advances to the next occupied entry.
	Next()
	// Ref returns the current (index, value) reference. Panics when Done.
	Ref() Ref[T, I]
}

// Backend is the Index-keyed, iterable mapping both storage formats
// implement.
type Backend[T any, I Coord] interface {
	Rows() int
	Cols() int
	Shape() (rows, cols int)
	NNZ() int
	Size() int

	Lookup(idx Index[I]) (T, bool)
	Insert(e Entry[T, I]) (bool, error)
	InsertOrAssign(idx Index[I], v T) (bool, error)
	AssignTuples(tuples []Tuple[T, I]) error
	InsertTuples(tuples []Tuple[T, I]) error

	All() iter.Seq[Ref[T, I]]
	Cursor() Iterator[T, I]
	Tuples() []Tuple[T, I]
	CheckInvariants() error
	Reset()
}

// Format names a physical storage encoding.
type Format uint8

const (
	// FormatCSR selects the compressed-sparse-row backend.
	FormatCSR Format = iota
	// FormatDIA selects the diagonal backend.
	FormatDIA
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatCSR:
		return "csr"
	case FormatDIA:
		return "dia"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// New constructs an empty backend of the given format.
// Errors: ErrBadShape, ErrCapacity, or ErrBadShape for an unknown format.
func New[T any, I Coord](f Format, rows, cols int, opts ...Option) (Backend[T, I], error) {
	switch f {
	case FormatCSR:
		c, err := NewCSR[T, I](rows, cols, opts...)
		if err != nil {
			return nil, err
		}

		return c, nil
	case FormatDIA:
		d, err := NewDIA[T, I](rows, cols, opts...)
		if err != nil {
			return nil, err
		}

		return d, nil
	default:
		return nil, matrixErrorf(fmt.Sprintf("New(%s)", f), ErrBadShape)
	}
}

// NewFromImport constructs a backend of the given format from desc.
func NewFromImport[T any, I Coord](f Format, desc ImportDescription[T, I], opts ...Option) (Backend[T, I], error) {
	switch f {
	case FormatCSR:
		c, err := NewCSRFromImport(desc, opts...)
		if err != nil {
			return nil, err
		}

		return c, nil
	case FormatDIA:
		d, err := NewDIAFromImport(desc, opts...)
		if err != nil {
			return nil, err
		}

		return d, nil
	default:
		return nil, matrixErrorf(fmt.Sprintf("NewFromImport(%s)", f), ErrBadShape)
	}
}

// Collect materializes b as a map from coordinate to value.
// Complexity: O(nnz).
func Collect[T any, I Coord](b Backend[T, I]) map[Index[I]]T {
	out := make(map[Index[I]]T, b.NNZ())
	for r := range b.All() {
		out[r.Index()] = r.Value()
	}

	return out
}

// EqualContents reports whether a and b hold the same logical matrix
// (shape, coordinates and values), regardless of storage format and
// iteration order.
// Complexity: O(nnz(a) + nnz(b)).
func EqualContents[T comparable, I Coord](a, b Backend[T, I]) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ar != br || ac != bc || a.NNZ() != b.NNZ() {
		return false
	}
	for r := range a.All() {
		v, ok := b.Lookup(r.Index())
		if !ok || v != r.Value() {
			return false
		}
	}

	return true
}

// Convert replaces the contents of dst with those of src by way of the
// iteration contract (src.Tuples then dst.AssignTuples).
// Errors: ErrNilMatrix, ErrDimensionMismatch, or whatever dst reports.
func Convert[T any, I Coord](dst, src Backend[T, I]) error {
	if dst == nil || src == nil {
		return matrixErrorf("Convert", ErrNilMatrix)
	}
	dr, dc := dst.Shape()
	sr, sc := src.Shape()
	if dr != sr || dc != sc {
		return matrixErrorf("Convert", ErrDimensionMismatch)
	}

	return dst.AssignTuples(src.Tuples())
}
