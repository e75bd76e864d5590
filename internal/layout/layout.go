// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package layout defines the binary layout of a shared queue segment.
//
// The layout is a wire contract between processes: a fixed 192-byte header
// followed by an array of cache-line-aligned slots. All references inside the
// segment are positional; the segment contains no pointers.
//
//	[0 .. 8)      magic    "FQUEUE01"
//	[8 .. 12)     version  uint32
//	[16 .. 24)    element size (bytes per payload)
//	[24 .. 32)    capacity (power of two)
//	[32 .. 40)    ready sentinel (0 initializing, 1 ready)
//	[64 .. 72)    enqueue position (own cache line)
//	[128 .. 136)  dequeue position (own cache line)
//	[192 .. )     slot array, stride = roundUp(8+elementSize, 64)
//
// Each slot begins with an 8-byte sequence counter followed by exactly
// elementSize payload bytes.
package layout

import (
	"errors"
	"math"
)

const (
	// Magic identifies a formatted queue segment.
	Magic = "FQUEUE01"

	// Version is the current layout version.
	Version = uint32(1)

	// CacheLine is the assumed cache line size in bytes.
	CacheLine = 64

	// HeaderSize is the fixed header size. Three cache lines, so that the
	// immutable fields, the enqueue position and the dequeue position each
	// sit on a distinct line.
	HeaderSize = 3 * CacheLine

	// SeqSize is the size of the per-slot sequence counter.
	SeqSize = 8
)

// Header field offsets relative to the segment start.
const (
	MagicOffset       = 0
	VersionOffset     = 8
	ElementSizeOffset = 16
	CapacityOffset    = 24
	ReadyOffset       = 32
	EnqueuePosOffset  = CacheLine
	DequeuePosOffset  = 2 * CacheLine
)

// ErrBadParameters reports an element size or capacity outside the layout
// contract.
var ErrBadParameters = errors.New("layout: bad parameters")

// ErrTooLarge reports a segment size that does not fit in the address space.
var ErrTooLarge = errors.New("layout: segment too large")

// PowerOfTwo reports whether n is a power of two. Zero is not.
func PowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// CheckParams validates an element size and capacity pair.
// Capacity must be a power of two, never rounded: the requested values are a
// cross-process contract and attachers cross-check them verbatim.
func CheckParams(elementSize, capacity uint64) error {
	if elementSize < 1 {
		return ErrBadParameters
	}
	if !PowerOfTwo(capacity) {
		return ErrBadParameters
	}
	return nil
}

// SlotStride returns the slot stride for the given element size:
// sequence counter plus payload, rounded up to a full cache line.
func SlotStride(elementSize uint64) uint64 {
	return (SeqSize + elementSize + CacheLine - 1) &^ uint64(CacheLine-1)
}

// SegmentSize returns the exact byte size of a segment holding capacity
// slots of elementSize payload bytes each.
func SegmentSize(elementSize, capacity uint64) (uint64, error) {
	if err := CheckParams(elementSize, capacity); err != nil {
		return 0, err
	}
	if elementSize > math.MaxUint64-SeqSize-(CacheLine-1) {
		return 0, ErrTooLarge
	}
	stride := SlotStride(elementSize)
	if capacity > (math.MaxUint64-HeaderSize)/stride {
		return 0, ErrTooLarge
	}
	total := HeaderSize + capacity*stride
	if total > math.MaxInt64 {
		return 0, ErrTooLarge
	}
	return total, nil
}

// SlotOffset returns the offset of slot i from the segment start.
// The sequence counter sits at the offset itself, the payload at offset+8.
func SlotOffset(elementSize, i uint64) uint64 {
	return HeaderSize + i*SlotStride(elementSize)
}
