// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package shmq

import (
	"context"
	"errors"

	"code.hybscloud.com/iox"
)

// Enqueue retries TryEnqueue with adaptive backoff until the element is
// stored or ctx ends.
//
// A deadline expiry surfaces as ErrFull, since the queue stayed full for the
// entire budget; an explicit cancellation surfaces as ctx.Err(). Errors other
// than ErrFull abort the retry loop immediately.
func (q *Queue) Enqueue(ctx context.Context, p []byte) error {
	backoff := iox.Backoff{}
	for {
		err := q.TryEnqueue(p)
		if err == nil || !errors.Is(err, ErrFull) {
			return err
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFull
			}
			return ctx.Err()
		default:
		}
		backoff.Wait()
	}
}

// Dequeue retries TryDequeue with adaptive backoff until an element arrives
// or ctx ends. The returned slice is freshly allocated.
//
// A deadline expiry surfaces as ErrEmpty; an explicit cancellation surfaces
// as ctx.Err(). Errors other than ErrEmpty abort the retry loop immediately.
func (q *Queue) Dequeue(ctx context.Context) ([]byte, error) {
	buf := make([]byte, q.ring.ElementSize())
	if err := q.DequeueInto(ctx, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// DequeueInto retries TryDequeueInto with adaptive backoff until an element
// is copied into dst or ctx ends. dst must be exactly ElementSize bytes.
func (q *Queue) DequeueInto(ctx context.Context, dst []byte) error {
	backoff := iox.Backoff{}
	for {
		err := q.TryDequeueInto(dst)
		if err == nil || !errors.Is(err, ErrEmpty) {
			return err
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrEmpty
			}
			return ctx.Err()
		default:
		}
		backoff.Wait()
	}
}
