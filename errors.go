// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrFull indicates an enqueue found every slot occupied.
//
// ErrFull is a control flow signal, not a failure: the caller should retry
// later (with backoff) or treat it as backpressure. It wraps
// [iox.ErrWouldBlock] for ecosystem consistency, so [IsWouldBlock] and
// errors.Is(err, iox.ErrWouldBlock) both report true.
var ErrFull = fmt.Errorf("shmq: queue full: %w", iox.ErrWouldBlock)

// ErrEmpty indicates a dequeue found no published element.
//
// Like [ErrFull] it is a control flow signal wrapping [iox.ErrWouldBlock].
var ErrEmpty = fmt.Errorf("shmq: queue empty: %w", iox.ErrWouldBlock)

// ErrInvalidParameters indicates a caller-side contract violation: missing
// element size or capacity on create, capacity not a power of two, a payload
// or destination whose length differs from the element size, or attach
// expectations that disagree with the segment header.
var ErrInvalidParameters = errors.New("shmq: invalid parameters")

// ErrCreateFailed indicates the OS rejected the exclusive creation of the
// named segment: name already in use, permissions, or quota.
var ErrCreateFailed = errors.New("shmq: create shared memory failed")

// ErrOpenFailed indicates the named segment could not be opened, does not
// hold a valid queue, or did not become ready within the attach wait.
var ErrOpenFailed = errors.New("shmq: open shared memory failed")

// ErrClosed indicates the queue handle was detached. The segment itself may
// still be alive; only this handle is unusable.
var ErrClosed = errors.New("shmq: queue is closed")

// IsWouldBlock reports whether err indicates the operation would block
// (queue full or empty). Delegates to [iox.IsWouldBlock] for wrapped error
// support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
