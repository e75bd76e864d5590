// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"fmt"
	"time"
)

// DefaultAttachWait is the default budget Attach spends waiting for the
// segment creator to publish the ready sentinel.
const DefaultAttachWait = time.Second

// Options configures queue creation and attachment.
type Options struct {
	// Queue geometry (required on create, cross-checked on attach)
	elementSize    uint64
	capacity       uint64
	hasElementSize bool
	hasCapacity    bool

	// How long Attach waits for the creator to finish formatting
	attachWait time.Duration
}

// Builder opens queues with fluent configuration.
//
// Create requires both ElementSize and Capacity; Attach reads the geometry
// from the segment header and treats any configured value as an expectation
// to verify.
//
// Example:
//
//	// Creator process
//	q, err := shmq.New("orders").ElementSize(64).Capacity(1024).Create()
//
//	// Attaching process, verifying the element size it was compiled for
//	q, err := shmq.New("orders").ElementSize(64).Attach()
//
//	// Attaching process that takes whatever geometry it finds
//	q, err := shmq.New("orders").Attach()
type Builder struct {
	name string
	opts Options
}

// New creates a queue builder for the named segment.
func New(name string) *Builder {
	return &Builder{
		name: name,
		opts: Options{attachWait: DefaultAttachWait},
	}
}

// ElementSize sets the payload size per element in bytes.
//
// Required for Create. On Attach it is an expectation: attachment fails with
// ErrInvalidParameters if the segment was formatted with a different size.
func (b *Builder) ElementSize(n uint64) *Builder {
	b.opts.elementSize = n
	b.opts.hasElementSize = true
	return b
}

// Capacity sets the slot count. Must be a power of two; the value is never
// rounded, since every attached process has to agree on it.
//
// Required for Create. On Attach it is an expectation: attachment fails with
// ErrInvalidParameters if the segment was formatted with a different
// capacity.
func (b *Builder) Capacity(n uint64) *Builder {
	b.opts.capacity = n
	b.opts.hasCapacity = true
	return b
}

// AttachWait sets how long Attach waits for the creator to publish the
// ready sentinel. Zero or negative checks exactly once.
func (b *Builder) AttachWait(d time.Duration) *Builder {
	b.opts.attachWait = d
	return b
}

// Create creates the named segment exclusively, formats it as a queue and
// publishes it for attachers.
//
// Requires both ElementSize and Capacity; returns ErrInvalidParameters
// otherwise. Returns ErrCreateFailed if the name is already in use.
func (b *Builder) Create() (*Queue, error) {
	if !b.opts.hasElementSize || !b.opts.hasCapacity {
		return nil, fmt.Errorf("%w: create requires element size and capacity",
			ErrInvalidParameters)
	}
	return createQueue(b.name, b.opts.elementSize, b.opts.capacity)
}

// Attach opens the named segment created by another process and binds to
// its queue, verifying any configured geometry expectations against the
// segment header.
func (b *Builder) Attach() (*Queue, error) {
	return attachQueue(b.name, b.opts)
}
