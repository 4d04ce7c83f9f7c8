// Package matrix offers sparse storage backends for GraphBLAS-style
// matrices.
//
// The matrix package provides:
//
//   - CSR, a compressed-sparse-row backend: rowptr/colind/values with
//     strictly increasing columns per row. Bulk loads sort and compact,
//     point insertion reallocates.
//   - DIA, a diagonal backend: one lazily allocated value/occupancy buffer
//     per diagonal, kept in a B-tree ordered by diagonal id. Insertion into
//     an allocated diagonal never reallocates.
//   - The Backend/Iterator contract both satisfy, plus format-agnostic
//     facades (New, NewFromImport, Collect, EqualContents, Convert).
//   - Resource, HeapResource and BoundedResource for explicit storage
//     accounting.
//
// Diagonal addressing for an m×n DIA: the diagonal through (i, j) has id
// (j-i)+m-1, in [0, m+n-1), and the slot of (i, j) on it is min(i, j).
//
// Backends are not safe for concurrent use. Any insertion that reallocates
// invalidates outstanding iterators and Refs; with debug checks on (the
// default) using one afterwards panics.
//
// See the examples in this package for usage patterns.
package matrix
