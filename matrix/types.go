// SPDX-License-Identifier: MIT

// Package matrix: domain types shared by every backend.
// This file intentionally contains ONLY pure data (coordinates, entries,
// import tuples) plus the batch compaction helper both backends use before
// touching storage. Errors and options live in dedicated files.
package matrix

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

// Coord is the coordinate constraint: any unsigned integer type.
type Coord interface {
	constraints.Unsigned
}

// Index is a logical (row, column) coordinate.
// Canonical CSR order is lexicographic (Row, Col); see Compare.
type Index[I Coord] struct {
	Row I
	Col I
}

// Idx builds an Index from a row and a column.
func Idx[I Coord](row, col I) Index[I] { return Index[I]{Row: row, Col: col} }

// Compare orders a and b lexicographically by (Row, Col).
// Returns -1, 0 or +1 like cmp.Compare.
func Compare[I Coord](a, b Index[I]) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}

	return cmp.Compare(a.Col, b.Col)
}

// Less reports whether x sorts before y in (Row, Col) order.
func (x Index[I]) Less(y Index[I]) bool { return Compare(x, y) < 0 }

// Entry binds a unique Index to a value.
// At most one Entry exists per Index within a backend at any time.
type Entry[T any, I Coord] struct {
	Index Index[I]
	Value T
}

// Tuple is the bulk-load unit (value, row, column), in the order format
// loaders produce it.
type Tuple[T any, I Coord] struct {
	Value T
	Row   I
	Col   I
}

// Index returns the tuple coordinate.
func (t Tuple[T, I]) Index() Index[I] { return Index[I]{Row: t.Row, Col: t.Col} }

// ImportDescription is what an external loader (matrix-market reader etc.)
// hands to a backend: a shape and an unordered tuple list, possibly with
// duplicate coordinates.
type ImportDescription[T any, I Coord] struct {
	Rows   int
	Cols   int
	Tuples []Tuple[T, I]
}

// compactTuples returns a (Row, Col)-sorted copy of tuples with equal
// coordinates collapsed per policy. The input slice is never modified.
//
// Implementation:
//   - Stage 1: copy, then stable sort by (Row, Col) so input order survives
//     within a run of equal coordinates.
//   - Stage 2: single compaction pass keeping the first or last of each run.
//
// Complexity: O(k log k) time, O(k) space.
func compactTuples[T any, I Coord](tuples []Tuple[T, I], policy DuplicatePolicy) []Tuple[T, I] {
	out := slices.Clone(tuples)
	slices.SortStableFunc(out, func(a, b Tuple[T, I]) int {
		return Compare(a.Index(), b.Index())
	})

	w := 0
	for r := 0; r < len(out); r++ {
		if w > 0 && out[w-1].Row == out[r].Row && out[w-1].Col == out[r].Col {
			if policy == LastWins {
				out[w-1] = out[r]
			}
			continue
		}
		out[w] = out[r]
		w++
	}

	return out[:w]
}
