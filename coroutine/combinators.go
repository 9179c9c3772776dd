/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package coroutine

import (
	"context"
	"time"
)

// WhenAll blocks until every task has completed, returning the first
// error encountered (if any) in task order. All tasks are already
// running (Go starts them eagerly) by the time WhenAll is called, the
// same "drivers start immediately" property when_all relies on in the
// C++ original.
func WhenAll[T any](ctx context.Context, tasks ...*Task[T]) ([]T, error) {
	results := make([]T, len(tasks))
	var firstErr error
	for i, t := range tasks {
		select {
		case <-t.Done():
			results[i], tasks[i].err = t.Result()
			if tasks[i].err != nil && firstErr == nil {
				firstErr = tasks[i].err
			}
		case <-ctx.Done():
			return results, ctx.Err()
		}
	}
	return results, firstErr
}

// WhenAny blocks until the first of tasks completes and returns its
// index and result. Losing tasks are left running to completion in the
// background - WhenAny does not cancel them, mirroring the spec's
// explicit choice not to propagate cancellation to losers. When
// multiple tasks are already done by the time WhenAny is called, the
// winner is whichever task's forwarding goroutine reaches the shared
// done channel first, as the Go scheduler happens to run them; callers
// must not assume a deterministic winner among simultaneously-ready
// tasks.
func WhenAny[T any](ctx context.Context, tasks ...*Task[T]) (int, T, error) {
	cases := make([]chan struct{}, len(tasks))
	for i, t := range tasks {
		cases[i] = make(chan struct{})
		go func(i int, t *Task[T]) {
			<-t.Done()
			close(cases[i])
		}(i, t)
	}

	done := make(chan int, len(tasks))
	for i, c := range cases {
		go func(i int, c chan struct{}) {
			<-c
			done <- i
		}(i, c)
	}

	select {
	case i := <-done:
		result, err := tasks[i].Result()
		return i, result, err
	case <-ctx.Done():
		var zero T
		return -1, zero, ctx.Err()
	}
}

// WithTimeout races task against a deadline and returns task's result
// if it completes first, or ErrTimedOut if the deadline elapses first.
// task is not canceled on timeout; it keeps running in the background,
// the same non-cancellation behavior with_timeout's losing branch has.
func WithTimeout[T any](ctx context.Context, task *Task[T], timeout time.Duration) (T, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-task.Done():
		return task.Result()
	case <-timeoutCtx.Done():
		var zero T
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, ErrTimedOut
	}
}
