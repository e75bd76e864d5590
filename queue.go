// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"fmt"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/shmq/internal/layout"
	"code.hybscloud.com/shmq/internal/ring"
	"code.hybscloud.com/shmq/internal/shm"
)

// Queue is a handle on a shared-memory MPMC queue.
//
// A Queue is safe for concurrent use by any number of goroutines; the
// underlying segment is additionally shared with every other process
// attached under the same name. The handle owns only its mapping: Detach
// releases the mapping, while the segment itself lives until [Unlink].
//
// Do not call Detach concurrently with queue operations on the same handle;
// operations observe the detached state at their start only.
type Queue struct {
	seg    *shm.Segment
	ring   *ring.Ring
	name   string
	closed atomix.Bool
}

var (
	_ Producer  = (*Queue)(nil)
	_ Consumer  = (*Queue)(nil)
	_ Interface = (*Queue)(nil)
)

// Create creates the named segment with exclusive semantics, formats it as a
// queue of capacity slots carrying elementSize bytes each, and publishes it
// for attachers.
//
// Capacity must be a power of two and elementSize at least 1; violations
// return ErrInvalidParameters. An existing name returns ErrCreateFailed.
func Create(name string, elementSize, capacity uint64) (*Queue, error) {
	return New(name).ElementSize(elementSize).Capacity(capacity).Create()
}

// Attach opens the named segment created by another process and binds to
// its queue, waiting up to DefaultAttachWait for the creator to finish
// initialization. Use the [Builder] to cross-check expected parameters or
// change the wait budget.
func Attach(name string) (*Queue, error) {
	return New(name).Attach()
}

// Unlink removes the named segment. Processes already attached keep their
// mappings; new attaches fail. Unlinking is the explicit external step that
// ends the segment's lifetime.
func Unlink(name string) error {
	return shm.Unlink(name)
}

func createQueue(name string, elementSize, capacity uint64) (*Queue, error) {
	size, err := layout.SegmentSize(elementSize, capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: element size %d, capacity %d",
			ErrInvalidParameters, elementSize, capacity)
	}
	seg, err := shm.Create(name, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	r, err := ring.Init(seg.Bytes(), elementSize, capacity)
	if err != nil {
		seg.Close()
		shm.Unlink(name)
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	return &Queue{seg: seg, ring: r, name: name}, nil
}

func attachQueue(name string, opts Options) (*Queue, error) {
	seg, err := shm.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	r, err := ring.Bind(seg.Bytes(), opts.attachWait)
	if err != nil {
		seg.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	if opts.hasElementSize && opts.elementSize != r.ElementSize() {
		seg.Close()
		return nil, fmt.Errorf("%w: element size %d, segment has %d",
			ErrInvalidParameters, opts.elementSize, r.ElementSize())
	}
	if opts.hasCapacity && opts.capacity != r.Cap() {
		seg.Close()
		return nil, fmt.Errorf("%w: capacity %d, segment has %d",
			ErrInvalidParameters, opts.capacity, r.Cap())
	}
	return &Queue{seg: seg, ring: r, name: name}, nil
}

// TryEnqueue adds an element without blocking.
//
// p must be exactly ElementSize bytes; the length is validated before any
// slot is claimed, so a rejected payload never advances the queue. Returns
// ErrFull when every slot holds an unconsumed element.
func (q *Queue) TryEnqueue(p []byte) error {
	if q.closed.Load() {
		return ErrClosed
	}
	if uint64(len(p)) != q.ring.ElementSize() {
		return fmt.Errorf("%w: payload length %d, element size %d",
			ErrInvalidParameters, len(p), q.ring.ElementSize())
	}
	if q.ring.TryEnqueue(p) != nil {
		return ErrFull
	}
	return nil
}

// TryDequeue removes and returns the oldest element without blocking.
// The returned slice is freshly allocated. Returns ErrEmpty when no element
// is published for the next position.
func (q *Queue) TryDequeue() ([]byte, error) {
	if q.closed.Load() {
		return nil, ErrClosed
	}
	buf := make([]byte, q.ring.ElementSize())
	if q.ring.TryDequeueInto(buf) != nil {
		return nil, ErrEmpty
	}
	return buf, nil
}

// TryDequeueInto copies the oldest element into dst without allocating.
// dst must be exactly ElementSize bytes. Returns ErrEmpty when no element
// is published.
func (q *Queue) TryDequeueInto(dst []byte) error {
	if q.closed.Load() {
		return ErrClosed
	}
	if uint64(len(dst)) != q.ring.ElementSize() {
		return fmt.Errorf("%w: destination length %d, element size %d",
			ErrInvalidParameters, len(dst), q.ring.ElementSize())
	}
	if q.ring.TryDequeueInto(dst) != nil {
		return ErrEmpty
	}
	return nil
}

// Cap returns the slot count.
func (q *Queue) Cap() uint64 { return q.ring.Cap() }

// ElementSize returns the payload size per element in bytes.
func (q *Queue) ElementSize() uint64 { return q.ring.ElementSize() }

// Name returns the segment name this handle is attached to.
func (q *Queue) Name() string { return q.name }

// Empty reports whether the queue looked empty at a single snapshot.
func (q *Queue) Empty() bool {
	if q.closed.Load() {
		return true
	}
	return q.ring.Empty()
}

// Full reports whether the queue looked full at a single snapshot.
func (q *Queue) Full() bool {
	if q.closed.Load() {
		return false
	}
	return q.ring.Full()
}

// Len returns a snapshot of the element count, clamped to [0, Cap].
func (q *Queue) Len() uint64 {
	if q.closed.Load() {
		return 0
	}
	return q.ring.Len()
}

// Detach releases this handle's mapping of the segment. The segment and the
// elements in it survive; other attached processes are unaffected. Detach is
// idempotent, and subsequent operations on the handle return ErrClosed.
func (q *Queue) Detach() error {
	if q.closed.Load() {
		return nil
	}
	q.closed.Store(true)
	return q.seg.Close()
}
