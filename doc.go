// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package shmq provides a bounded MPMC FIFO queue over named shared memory.
//
// A queue lives in a shared-memory segment identified by a name. One process
// creates and formats the segment; any number of processes attach to it by
// name. Elements are opaque byte strings of a fixed size chosen at creation
// time, and every element is delivered to exactly one consumer across all
// attached processes.
//
// The queue is lock-free: producers and consumers coordinate through
// per-slot sequence counters with acquire-release ordering, so no process
// ever holds a lock inside the segment and a crashed process cannot leave
// one behind.
//
// # Quick Start
//
// Creator process:
//
//	q, err := shmq.Create("orders", 64, 1024)
//	if err != nil {
//	    return err
//	}
//	defer q.Detach()
//
// Attaching process:
//
//	q, err := shmq.Attach("orders")
//	if err != nil {
//	    return err
//	}
//	defer q.Detach()
//
// The [Builder] configures attachment expectations and wait budgets:
//
//	q, err := shmq.New("orders").
//	    ElementSize(64).
//	    AttachWait(5 * time.Second).
//	    Attach()
//
// # Basic Usage
//
// Non-blocking operations return immediately:
//
//	err := q.TryEnqueue(payload)
//	if shmq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	elem, err := q.TryDequeue()
//	if shmq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// Blocking wrappers retry with adaptive backoff until the operation
// succeeds or the context ends:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//
//	if err := q.Enqueue(ctx, payload); err != nil {
//	    // ErrFull if the queue stayed full for the whole budget
//	}
//
//	elem, err := q.Dequeue(ctx)
//
// For allocation-free consumption, reuse a destination buffer:
//
//	buf := make([]byte, q.ElementSize())
//	for {
//	    if err := q.TryDequeueInto(buf); err != nil {
//	        break
//	    }
//	    process(buf)
//	}
//
// # Common Patterns
//
// Work distribution across processes:
//
//	// Dispatcher process
//	q, _ := shmq.Create("jobs", jobSize, 4096)
//	for job := range jobs {
//	    if err := q.Enqueue(ctx, job); err != nil {
//	        return err
//	    }
//	}
//
//	// Worker processes, each with its own attachment
//	q, _ := shmq.Attach("jobs")
//	buf := make([]byte, q.ElementSize())
//	for {
//	    if err := q.DequeueInto(ctx, buf); err != nil {
//	        return err
//	    }
//	    execute(buf)
//	}
//
// Telemetry fan-in:
//
//	// Many emitter processes enqueue fixed-size records; a single
//	// collector drains them. The queue bounds memory and applies
//	// backpressure when the collector falls behind.
//	if err := q.TryEnqueue(record); shmq.IsWouldBlock(err) {
//	    dropped.Add(1)
//	}
//
// # Lifecycle
//
// The segment and the handles on it have independent lifetimes:
//
//   - [Create] formats the segment and publishes it. Creation is exclusive;
//     a second create under the same name fails with [ErrCreateFailed].
//   - [Attach] opens an existing segment, waiting up to the attach budget
//     for the creator to finish formatting.
//   - [Queue.Detach] releases one handle's mapping. The segment and the
//     elements in it survive; other processes are unaffected.
//   - [Unlink] removes the name. Already-attached processes keep working;
//     new attaches fail. Elements in flight when the last process detaches
//     after an unlink are lost with the segment.
//
// Elements survive the exit of any one process. A process that crashes
// between claiming a position and publishing or recycling its slot leaves
// that slot's sequence stale: consumers report [ErrEmpty] once they reach
// that position, and producers report [ErrFull] once they come round to the
// slot again. Nothing in the package repairs such a slot, and unlinking the
// name does not change it for processes that are already attached.
//
// # Error Handling
//
// Full and empty are control flow signals, not failures. [ErrFull] and
// [ErrEmpty] wrap [code.hybscloud.com/iox.ErrWouldBlock] for ecosystem
// consistency:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.TryEnqueue(p)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !shmq.IsWouldBlock(err) {
//	        return err // Real failure
//	    }
//	    backoff.Wait()
//	}
//
// For semantic error classification (delegates to iox):
//
//	shmq.IsWouldBlock(err)  // true if queue full/empty
//	shmq.IsSemantic(err)    // true if control flow signal
//	shmq.IsNonFailure(err)  // true if nil or would-block
//
// Setup failures carry their own kinds: [ErrInvalidParameters] for contract
// violations, [ErrCreateFailed] and [ErrOpenFailed] for segment-level
// problems, [ErrClosed] for operations on a detached handle.
//
// # Capacity and Length
//
// Capacity must be a power of two and is never rounded: the value is part
// of the wire contract between processes, so a silently adjusted capacity
// would break attachers that cross-check it.
//
// Empty, Full and Len are snapshots. In a live multi-process queue the
// answer may be stale before it is used; treat them as hints for monitoring
// and heuristics, not as transactional facts.
//
// # Thread Safety
//
// A Queue handle is safe for concurrent use by any number of goroutines,
// and the segment is safe for concurrent use by any number of attached
// processes. The one exception is Detach: do not call it concurrently with
// operations on the same handle, since operations observe the detached
// state at their start only.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// It tracks explicit synchronization primitives (mutex, channels, WaitGroup)
// but cannot observe happens-before relationships established through
// atomic memory orderings on separate variables, such as the slot sequence
// protecting its payload bytes.
//
// The algorithm is correct under acquire-release semantics, but the race
// detector may report false positives on the payload copies. Tests
// incompatible with race detection are skipped when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// adaptive backoff, [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package shmq
