// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for shape and coordinate checks.
//  - Keep backends minimal by delegating range checks here.
//  - Return tagged sentinel errors so call sites can match with errors.Is.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing on success.
//  - ValidateTuples is O(k) and runs before any resource is acquired.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// maxCoord returns the largest value representable by I, widened to uint64.
func maxCoord[I Coord]() uint64 {
	return uint64(^I(0))
}

// ValidateShape checks that rows and cols are non-negative, that their
// largest coordinates (rows-1, cols-1) fit in I, and that rows+cols stays
// below math.MaxInt so diagonal ids and offsets never overflow int.
//
// Errors: ErrBadShape (wrapped).
// Complexity: O(1).
func ValidateShape[I Coord](rows, cols int) error {
	if rows < 0 || cols < 0 {
		return validatorErrorf("ValidateShape", ErrBadShape)
	}
	// Diagonal ids reach rows+cols-2 and rowptr needs rows+1 slots.
	if rows >= math.MaxInt-cols {
		return validatorErrorf("ValidateShape: rows+cols", ErrBadShape)
	}
	limit := maxCoord[I]()
	if rows > 0 && uint64(rows-1) > limit {
		return validatorErrorf("ValidateShape: Rows", ErrBadShape)
	}
	if cols > 0 && uint64(cols-1) > limit {
		return validatorErrorf("ValidateShape: Columns", ErrBadShape)
	}

	return nil
}

// inShape reports whether (row, col) lies in [0,rows) x [0,cols).
func inShape[I Coord](rows, cols int, row, col I) bool {
	return uint64(row) < uint64(rows) && uint64(col) < uint64(cols)
}

// ValidateIndex checks a single coordinate against the shape.
//
// Errors: ErrOutOfRange (wrapped).
// Complexity: O(1).
func ValidateIndex[I Coord](rows, cols int, idx Index[I]) error {
	if !inShape(rows, cols, idx.Row, idx.Col) {
		return validatorErrorf("ValidateIndex", ErrOutOfRange)
	}

	return nil
}

// ValidateTuples checks every tuple coordinate against the shape. It returns
// the position of the first offending tuple, or -1 with a nil error.
//
// Errors: ErrOutOfRange (wrapped).
// Complexity: O(k).
func ValidateTuples[T any, I Coord](rows, cols int, tuples []Tuple[T, I]) (int, error) {
	for k, t := range tuples {
		if !inShape(rows, cols, t.Row, t.Col) {
			return k, validatorErrorf("ValidateTuples", ErrOutOfRange)
		}
	}

	return -1, nil
}
