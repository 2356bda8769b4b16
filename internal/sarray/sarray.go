// Package sarray implements a reference-counted, segmentable array, the Go
// counterpart of ps-lite's SArray<T>. Unlike the C++ original, the backing
// storage is released by the garbage collector rather than an explicit
// deleter; the refcount kept here is diagnostic only, useful for tests and
// for catching double-release bugs, not for memory management.
package sarray

import (
	"fmt"
	"sync/atomic"
)

// SArray is a slice of T that shares its backing storage with any of its
// segments. Segment never copies; it hands back a new handle pointing at
// the same underlying array and bumps the shared refcount.
type SArray[T any] struct {
	data []T
	ref  *int32
}

// FromSlice copies s into a freshly owned SArray.
func FromSlice[T any](s []T) *SArray[T] {
	cp := append([]T(nil), s...)
	ref := int32(1)
	return &SArray[T]{data: cp, ref: &ref}
}

// Adopt wraps data without copying it. The caller must not retain data
// after adopting it, mirroring SArray::reset's ownership transfer.
func Adopt[T any](data []T) *SArray[T] {
	ref := int32(1)
	return &SArray[T]{data: data, ref: &ref}
}

// Empty returns a zero-length SArray ready to receive Append calls.
func Empty[T any]() *SArray[T] {
	return FromSlice[T](nil)
}

// Segment returns the half-open slice [i, j) as a new handle sharing this
// array's backing storage. Out-of-range bounds panic, matching the
// fail-loudly posture of the rest of this package.
func (a *SArray[T]) Segment(i, j int) *SArray[T] {
	atomic.AddInt32(a.ref, 1)
	return &SArray[T]{data: a.data[i:j], ref: a.ref}
}

// Append grows the array in place, copying other's elements onto the end.
func (a *SArray[T]) Append(other *SArray[T]) {
	a.data = append(a.data, other.data...)
}

// Size returns the number of elements in this view.
func (a *SArray[T]) Size() int { return len(a.data) }

// Data exposes the underlying slice. Callers must not retain it across a
// later mutating call on the same SArray.
func (a *SArray[T]) Data() []T { return a.data }

// Refs reports the number of live handles sharing this array's backing
// storage, for diagnostics and tests.
func (a *SArray[T]) Refs() int32 { return atomic.LoadInt32(a.ref) }

// Release decrements the shared refcount and returns its new value.
func (a *SArray[T]) Release() int32 { return atomic.AddInt32(a.ref, -1) }

// EnsureLen grows a's backing storage to n elements if it is currently
// empty, or panics if it is already a different length. It is used when a
// caller-supplied output buffer must be sized to hold a pull result.
func (a *SArray[T]) EnsureLen(n int) {
	if len(a.data) == 0 {
		a.data = make([]T, n)
		return
	}
	if len(a.data) != n {
		panic(fmt.Sprintf("sarray: output buffer has %d elements, need %d", len(a.data), n))
	}
}
