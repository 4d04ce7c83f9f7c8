// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All backends MUST return these sentinels and tests MUST check them
// via errors.Is. No backend should panic on user-triggered error conditions.
// Panics are reserved for programmer errors (invalid options, stale iterators,
// slot bounds violations under debug checks).

package matrix

import (
	"errors"
	"fmt"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Backends wrap these sentinels with call-site
// context (method name and coordinates) via csrErrorf/diaErrorf; callers
// still match with errors.Is.
//
// ERROR PRIORITY (documented, enforced in tests):
// shape -> index -> capacity. A batch with both an out-of-range tuple and a
// capacity shortfall reports ErrOutOfRange, because validation runs before
// any resource is acquired.

var (
	// ErrBadShape is returned when a requested shape is invalid: negative
	// dimensions, or dimensions whose largest coordinate does not fit the
	// index type (e.g. 300 rows with uint8 coordinates).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a coordinate (row or column) lies outside
	// [0,m) x [0,n). Insertions MUST return this and leave storage untouched.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrCapacity is returned when the memory resource refuses to back a
	// reallocation or a lazy diagonal allocation. No partial mutation is
	// observable after it.
	ErrCapacity = errors.New("matrix: resource capacity exhausted")

	// ErrNilMatrix indicates that a nil backend (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrDimensionMismatch indicates that two backends of different shapes
	// were combined (Convert, EqualContents).
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrInvariant is returned by CheckInvariants when a structural invariant
	// (sorted columns, rowptr monotonicity, occupancy count) does not hold.
	ErrInvariant = errors.New("matrix: structural invariant violated")
)

// csrErrorf wraps err with CSR method context and the offending coordinates.
func csrErrorf(method string, row, col uint64, err error) error {
	return fmt.Errorf("CSR.%s(%d,%d): %w", method, row, col, err)
}

// diaErrorf wraps err with DIA method context and the offending coordinates.
func diaErrorf(method string, row, col uint64, err error) error {
	return fmt.Errorf("DIA.%s(%d,%d): %w", method, row, col, err)
}

// matrixErrorf wraps err with a facade/constructor tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
