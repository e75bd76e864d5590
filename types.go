// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import "context"

// Producer is the interface for enqueueing fixed-size elements.
//
// Payloads are opaque byte strings of exactly ElementSize bytes; the queue
// stores a copy, so the caller's buffer can be reused after the call
// returns.
type Producer interface {
	// TryEnqueue adds an element without blocking.
	// Returns nil on success, ErrFull if every slot is occupied, or
	// ErrInvalidParameters if len(p) differs from the element size.
	TryEnqueue(p []byte) error

	// Enqueue retries TryEnqueue with backoff until success or ctx ends.
	Enqueue(ctx context.Context, p []byte) error
}

// Consumer is the interface for dequeueing fixed-size elements.
//
// Each element is delivered at most once across all consumers in all
// attached processes.
type Consumer interface {
	// TryDequeue removes the oldest element without blocking.
	// The returned slice is freshly allocated and exactly ElementSize
	// bytes. Returns ErrEmpty if no element is published.
	TryDequeue() ([]byte, error)

	// TryDequeueInto copies the oldest element into dst without
	// allocating. dst must be exactly ElementSize bytes.
	TryDequeueInto(dst []byte) error

	// Dequeue retries TryDequeue with backoff until success or ctx ends.
	Dequeue(ctx context.Context) ([]byte, error)
}

// Interface is the combined producer-consumer view of a shared queue.
//
// Empty, Full and Len are snapshots, not transactional facts: concurrent
// operations in other processes may change the answer before it is used.
type Interface interface {
	Producer
	Consumer

	// Cap returns the slot count (a power of two).
	Cap() uint64

	// ElementSize returns the payload size per element in bytes.
	ElementSize() uint64

	// Empty reports whether the queue looked empty at a snapshot.
	Empty() bool

	// Full reports whether the queue looked full at a snapshot.
	Full() bool

	// Len returns a snapshot of the element count in [0, Cap].
	Len() uint64
}
