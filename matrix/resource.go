// SPDX-License-Identifier: MIT

// Package matrix: memory resources.
//
// Purpose:
//   - Thread an explicit memory resource through every backend constructor so
//     storage is never silently charged to a single global allocator.
//   - Let callers bound the storage a backend may hold and observe refusal as
//     ErrCapacity before any state changes.
//
// Contract:
//   - Backends call Acquire BEFORE allocating a new buffer and Release AFTER
//     dropping the buffer it replaces.
//   - A failed Acquire leaves the resource unchanged.
//   - Resources are not synchronized; backends are single-threaded and a
//     resource shared across backends must follow the same rule.

package matrix

import (
	"fmt"
	"unsafe"
)

// Resource accounts for backend storage in bytes.
type Resource interface {
	// Acquire reserves bytes or returns an error wrapping ErrCapacity.
	Acquire(bytes int64) error
	// Release returns bytes previously acquired.
	Release(bytes int64)
	// InUse reports the bytes currently reserved.
	InUse() int64
}

// HeapResource is an unbounded resource backed by the Go heap.
// It only tracks usage.
type HeapResource struct {
	inUse int64
}

var (
	_ Resource = (*HeapResource)(nil)
	_ Resource = (*BoundedResource)(nil)
)

// NewHeapResource returns an empty unbounded resource.
func NewHeapResource() *HeapResource { return &HeapResource{} }

// Acquire always succeeds.
func (h *HeapResource) Acquire(bytes int64) error {
	h.inUse += bytes

	return nil
}

// Release decrements usage.
func (h *HeapResource) Release(bytes int64) { h.inUse -= bytes }

// InUse reports the bytes currently reserved.
func (h *HeapResource) InUse() int64 { return h.inUse }

// BoundedResource refuses any Acquire that would push usage past limit.
type BoundedResource struct {
	limit int64
	inUse int64
}

// NewBoundedResource returns a resource holding at most limit bytes.
// A negative limit is treated as zero.
func NewBoundedResource(limit int64) *BoundedResource {
	if limit < 0 {
		limit = 0
	}

	return &BoundedResource{limit: limit}
}

// Acquire reserves bytes or returns ErrCapacity (wrapped with the request).
func (b *BoundedResource) Acquire(bytes int64) error {
	if bytes > b.limit-b.inUse {
		return fmt.Errorf("BoundedResource.Acquire(%d): in use %d of %d: %w",
			bytes, b.inUse, b.limit, ErrCapacity)
	}
	b.inUse += bytes

	return nil
}

// Release returns bytes; usage never drops below zero.
func (b *BoundedResource) Release(bytes int64) {
	b.inUse -= bytes
	if b.inUse < 0 {
		b.inUse = 0
	}
}

// InUse reports the bytes currently reserved.
func (b *BoundedResource) InUse() int64 { return b.inUse }

// Limit reports the configured ceiling.
func (b *BoundedResource) Limit() int64 { return b.limit }

// sizeOf returns the byte footprint of n elements of E.
func sizeOf[E any](n int) int64 {
	var zero E

	return int64(n) * int64(unsafe.Sizeof(zero))
}
