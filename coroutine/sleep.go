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
	"errors"
	"time"
)

// ErrTimedOut is returned by WithTimeout when the deadline elapses
// before the raced task completes.
var ErrTimedOut = errors.New("coroutine: operation timed out")

// Sleep suspends the calling goroutine for d, or until ctx is
// canceled, whichever comes first. This is the direct analogue of
// sleep_for/SleepAwaitable, but a blocking time.Sleep-via-timer stands
// in for the original's cooperative deadline-polling loop since Go's
// scheduler already multiplexes goroutines without that trick.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Yield gives other goroutines a chance to run before the caller
// proceeds, the goroutine-scheduler equivalent of a coroutine
// suspend-and-immediately-resume point.
func Yield() {
	done := make(chan struct{})
	go close(done)
	<-done
}
