// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring implements a lock-free MPMC ring buffer over a mapped
// shared-memory region.
//
// The algorithm is the CAS-based sequence-number scheme: each slot carries a
// 64-bit sequence counter whose value relative to the producer/consumer
// position encodes the slot state. Producers claim positions by CAS on the
// enqueue position, consumers by CAS on the dequeue position, and payload
// visibility across processes is carried entirely by the release-store /
// acquire-load pairing on the slot sequence.
//
// All state lives inside the region handed to Init or Bind; a Ring value
// holds only the decoded geometry and pointers into the mapping, so any
// number of processes can operate on the same region concurrently.
package ring

import (
	"errors"
	"time"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/shmq/internal/layout"
)

// readySentinel is the value of the ready field once initialization has
// completed and the layout may be trusted by attachers.
const readySentinel = 1

// ErrBadSegment reports a region that does not hold a valid queue layout:
// wrong magic or version, impossible geometry, misaligned or truncated
// mapping.
var ErrBadSegment = errors.New("ring: segment does not hold a valid queue")

// ErrNotReady reports that the creator has not published the ready sentinel
// within the attach wait budget.
var ErrNotReady = errors.New("ring: segment not initialized")

// header is the fixed region prefix. Field offsets follow the layout
// contract; the padding keeps the immutable fields, the enqueue position and
// the dequeue position on three distinct cache lines.
type header struct {
	magic      [8]byte
	version    uint32
	_          uint32
	elemSize   uint64
	capacity   uint64
	ready      atomix.Uint64
	_          [layout.CacheLine - 40]byte
	enqueuePos atomix.Uint64
	_          [layout.CacheLine - 8]byte
	dequeuePos atomix.Uint64
	_          [layout.CacheLine - 8]byte
}

// The header must match the layout contract exactly.
var (
	_ [layout.HeaderSize - int(unsafe.Sizeof(header{}))]byte
	_ [int(unsafe.Sizeof(header{})) - layout.HeaderSize]byte
)

// Ring is a bound view of a queue region. It is safe for concurrent use by
// any number of goroutines and processes sharing the region.
type Ring struct {
	hdr      *header
	slots    unsafe.Pointer
	mask     uint64
	capacity uint64
	elemSize uint64
	stride   uintptr
}

func bindGeometry(mem []byte, elemSize, capacity uint64) *Ring {
	hdr := (*header)(unsafe.Pointer(unsafe.SliceData(mem)))
	return &Ring{
		hdr:      hdr,
		slots:    unsafe.Add(unsafe.Pointer(hdr), layout.HeaderSize),
		mask:     capacity - 1,
		capacity: capacity,
		elemSize: elemSize,
		stride:   uintptr(layout.SlotStride(elemSize)),
	}
}

func checkRegion(mem []byte, elemSize, capacity uint64) error {
	need, err := layout.SegmentSize(elemSize, capacity)
	if err != nil {
		return ErrBadSegment
	}
	if uint64(len(mem)) < need {
		return ErrBadSegment
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(mem)))%layout.SeqSize != 0 {
		return ErrBadSegment
	}
	return nil
}

// Init formats mem as a fresh queue and returns a bound Ring.
//
// The region is zeroed, the immutable header fields are written, slot i is
// seeded with sequence i, and only then is the ready sentinel published with
// release ordering. Attachers that observe the sentinel therefore observe
// the fully formatted layout.
func Init(mem []byte, elemSize, capacity uint64) (*Ring, error) {
	if err := layout.CheckParams(elemSize, capacity); err != nil {
		return nil, ErrBadSegment
	}
	if err := checkRegion(mem, elemSize, capacity); err != nil {
		return nil, err
	}
	clear(mem)

	r := bindGeometry(mem, elemSize, capacity)
	copy(r.hdr.magic[:], layout.Magic)
	r.hdr.version = layout.Version
	r.hdr.elemSize = elemSize
	r.hdr.capacity = capacity
	for i := uint64(0); i < capacity; i++ {
		r.slotSeq(i).StoreRelaxed(i)
	}
	r.hdr.ready.StoreRelease(readySentinel)
	return r, nil
}

// Bind attaches to a queue formatted by another process.
//
// Bind spin-waits up to wait for the ready sentinel (wait <= 0 checks once),
// then validates magic, version and geometry against the mapped size.
func Bind(mem []byte, wait time.Duration) (*Ring, error) {
	if uintptr(len(mem)) < layout.HeaderSize {
		return nil, ErrBadSegment
	}
	hdr := (*header)(unsafe.Pointer(unsafe.SliceData(mem)))

	deadline := time.Now().Add(wait)
	sw := spin.Wait{}
	for hdr.ready.LoadAcquire() != readySentinel {
		if wait <= 0 || time.Now().After(deadline) {
			return nil, ErrNotReady
		}
		sw.Once()
	}

	if string(hdr.magic[:]) != layout.Magic || hdr.version != layout.Version {
		return nil, ErrBadSegment
	}
	elemSize, capacity := hdr.elemSize, hdr.capacity
	if err := layout.CheckParams(elemSize, capacity); err != nil {
		return nil, ErrBadSegment
	}
	if err := checkRegion(mem, elemSize, capacity); err != nil {
		return nil, err
	}
	return bindGeometry(mem, elemSize, capacity), nil
}

func (r *Ring) slotSeq(i uint64) *atomix.Uint64 {
	return (*atomix.Uint64)(unsafe.Add(r.slots, uintptr(i)*r.stride))
}

func (r *Ring) slotPayload(i uint64) []byte {
	p := unsafe.Add(r.slots, uintptr(i)*r.stride+layout.SeqSize)
	return unsafe.Slice((*byte)(p), r.elemSize)
}

// TryEnqueue claims a slot, copies src into it and publishes it.
// src must be exactly ElementSize bytes; the caller validates length before
// any claim attempt. Returns iox.ErrWouldBlock when the queue is full.
func (r *Ring) TryEnqueue(src []byte) error {
	sw := spin.Wait{}
	for {
		tail := r.hdr.enqueuePos.LoadAcquire()
		slot := tail & r.mask
		seq := r.slotSeq(slot).LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if r.hdr.enqueuePos.CompareAndSwapAcqRel(tail, tail+1) {
				copy(r.slotPayload(slot), src)
				r.slotSeq(slot).StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			// Sequence a full lap behind the claim: every slot holds an
			// unconsumed element.
			return iox.ErrWouldBlock
		}
		sw.Once()
	}
}

// TryDequeueInto claims the oldest published slot, copies its payload into
// dst and recycles the slot for the producer one lap ahead.
// dst must be exactly ElementSize bytes. Returns iox.ErrWouldBlock when the
// queue is empty.
func (r *Ring) TryDequeueInto(dst []byte) error {
	sw := spin.Wait{}
	for {
		head := r.hdr.dequeuePos.LoadAcquire()
		slot := head & r.mask
		seq := r.slotSeq(slot).LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if r.hdr.dequeuePos.CompareAndSwapAcqRel(head, head+1) {
				copy(dst, r.slotPayload(slot))
				r.slotSeq(slot).StoreRelease(head + r.capacity)
				return nil
			}
		} else if diff < 0 {
			// Element for this position not yet published.
			return iox.ErrWouldBlock
		}
		sw.Once()
	}
}

// Empty reports whether the queue looked empty at a single snapshot.
// The result is a hint, not a transactional fact.
func (r *Ring) Empty() bool {
	return r.hdr.enqueuePos.LoadAcquire() == r.hdr.dequeuePos.LoadAcquire()
}

// Full reports whether the queue looked full at a single snapshot.
func (r *Ring) Full() bool {
	head := r.hdr.dequeuePos.LoadAcquire()
	tail := r.hdr.enqueuePos.LoadAcquire()
	return tail-head >= r.capacity
}

// Len returns a snapshot of the queue length, clamped to [0, Cap].
// Concurrent operations may skew the snapshot by in-flight claims.
func (r *Ring) Len() uint64 {
	head := r.hdr.dequeuePos.LoadAcquire()
	tail := r.hdr.enqueuePos.LoadAcquire()
	if tail <= head {
		return 0
	}
	if n := tail - head; n < r.capacity {
		return n
	}
	return r.capacity
}

// Cap returns the slot count.
func (r *Ring) Cap() uint64 { return r.capacity }

// ElementSize returns the payload size per slot in bytes.
func (r *Ring) ElementSize() uint64 { return r.elemSize }

// Positions returns the raw enqueue and dequeue position counters.
func (r *Ring) Positions() (enqueue, dequeue uint64) {
	return r.hdr.enqueuePos.LoadAcquire(), r.hdr.dequeuePos.LoadAcquire()
}
