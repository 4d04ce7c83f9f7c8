// SPDX-License-Identifier: MIT

package matrix

// Test-Bridge (White-Box) for backend internals.
//
// Purpose:
//   - Expose raw CSR slices and DIA buckets to matrix_test ONLY, so structural
//     invariants can be asserted without widening the production API.
//   - Provide corruption hooks to prove CheckInvariants and the debug slot
//     guard actually fire.

// CSRRaw returns the backing rowptr/colind/values slices.
func CSRRaw[T any, I Coord](c *CSR[T, I]) ([]int, []I, []T) {
	return c.rowptr, c.colind, c.values
}

// CSRSwapColumns swaps two colind entries in place (breaks sorting).
func CSRSwapColumns[T any, I Coord](c *CSR[T, I], a, b int) {
	c.colind[a], c.colind[b] = c.colind[b], c.colind[a]
}

// DIABucket returns the buffers of diagonal id, if allocated.
func DIABucket[T any, I Coord](d *DIA[T, I], id int) ([]T, []bool, bool) {
	dg, ok := d.bucket(id)
	if !ok {
		return nil, nil, false
	}

	return dg.values, dg.occupied, true
}

// DIAAllocate allocates the diagonal through (row, col) without occupying a slot.
func DIAAllocate[T any, I Coord](d *DIA[T, I], row, col I) error {
	_, _, err := d.ensure("test", row, col)

	return err
}

// DIATruncate shortens the buffers of diagonal id to l slots.
func DIATruncate[T any, I Coord](d *DIA[T, I], id, l int) {
	dg, ok := d.bucket(id)
	if !ok {
		return
	}
	dg.values = dg.values[:l]
	dg.occupied = dg.occupied[:l]
}

// ExportedDiagonalLen exposes diagonalLen.
var ExportedDiagonalLen = diagonalLen

// ExportedCompactTuples exposes compactTuples for float64/uint32 tuples.
func ExportedCompactTuples(tuples []Tuple[float64, uint32], p DuplicatePolicy) []Tuple[float64, uint32] {
	return compactTuples(tuples, p)
}

// OptionsSnapshot is a read-only view of gathered options.
type OptionsSnapshot struct {
	Duplicates  DuplicatePolicy
	Conflicts   ConflictPolicy
	DebugChecks bool
	Resource    Resource
}

// GatherOptionsSnapshot_TestOnly applies opts over the defaults.
func GatherOptionsSnapshot_TestOnly(opts ...Option) OptionsSnapshot {
	o := gatherOptions(opts...)

	return OptionsSnapshot{
		Duplicates:  o.duplicates,
		Conflicts:   o.conflicts,
		DebugChecks: o.debugChecks,
		Resource:    o.resource,
	}
}
