// Package grb is the storage layer of a GraphBLAS-style sparse matrix
// library: physical encodings for sparse matrices behind one traversal
// contract.
//
// 🚀 What is in grb?
//
//	A pure-Go, generic, single-threaded storage core:
//		• CSR: compressed sparse row, row-major traversal, O(log rowlen) lookup
//		• DIA: lazily allocated diagonals, diagonal-major traversal, O(1) slot access
//		• Index / Entry / Tuple / Ref value types shared by both
//		• Forward iterators and iter.Seq ranges with in-place value mutation
//		• Explicit memory resources that can bound and account for storage
//
// ✨ Guarantees
//
//   - Every mutation is all-or-nothing: an error leaves contents untouched.
//   - No user-triggered condition panics; out-of-range and capacity failures
//     are sentinel errors matched with errors.Is.
//   - Each stored coordinate is visited exactly once per traversal.
//
// Everything lives in one subpackage:
//
//	matrix/  backends, iterators, options, resources and validators
//
// Quick start:
//
//	c, _ := matrix.NewCSR[float64, uint32](3, 3)
//	_ = c.AssignTuples([]matrix.Tuple[float64, uint32]{{Value: 1, Row: 0, Col: 0}})
//	for r := range c.All() {
//		r.Set(r.Value() * 2)
//	}
package grb
