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
	"sync/atomic"
	"unsafe"
)

// waiter is one node in AsyncMutex's intrusive LIFO waiter list. Unlike
// async_primitives.hpp's LockAwaiter, which stores a coroutine_handle to
// resume, a waiter stores a channel the blocked goroutine is parked on;
// Unlock closes it to wake the goroutine.
type waiter struct {
	next  *waiter
	ready chan struct{}
}

// lockedSentinel marks "locked, no waiters" - any non-nil pointer other
// than a *waiter would do, but a distinct sentinel address keeps the
// state machine's three cases (unlocked / locked-no-waiters /
// locked-with-waiters) unambiguous exactly as the C++ original encodes
// them.
var lockedSentinelTag byte

func lockedSentinel() unsafe.Pointer { return unsafe.Pointer(&lockedSentinelTag) }

// AsyncMutex is a non-blocking-acquire mutex for goroutines: a failed
// fast-path CAS enqueues the caller on an intrusive atomic list instead
// of calling into the Go runtime's scheduler lock, the same design
// async_primitives.hpp uses to avoid blocking an OS thread on mutex
// contention.
type AsyncMutex struct {
	state atomic.Pointer[waiter]
}

// ScopedLock is the RAII-style handle Lock returns; callers must call
// Unlock (typically via defer) exactly once.
type ScopedLock struct {
	mu *AsyncMutex
}

// Unlock releases the mutex. Safe to call at most once per ScopedLock.
func (s ScopedLock) Unlock() { s.mu.unlock() }

// Lock acquires the mutex, blocking the calling goroutine (via channel
// receive, not a runtime mutex) until it is available. Returns a
// ScopedLock the caller must Unlock.
func (m *AsyncMutex) Lock() ScopedLock {
	// Fast path: CAS from nil (unlocked) to the locked sentinel.
	if m.state.CompareAndSwap(nil, sentinelAsWaiter()) {
		return ScopedLock{mu: m}
	}

	w := &waiter{ready: make(chan struct{})}
	for {
		old := m.state.Load()
		if old == nil {
			if m.state.CompareAndSwap(nil, sentinelAsWaiter()) {
				return ScopedLock{mu: m}
			}
			continue
		}

		if old == sentinelAsWaiter() {
			w.next = nil
		} else {
			w.next = old
		}

		if m.state.CompareAndSwap(old, w) {
			<-w.ready // parked until unlock resumes us
			return ScopedLock{mu: m}
		}
	}
}

func (m *AsyncMutex) unlock() {
	// Fast path: no waiters.
	old := m.state.Load()
	if old == sentinelAsWaiter() {
		if m.state.CompareAndSwap(old, nil) {
			return
		}
	}

	for {
		old = m.state.Load()
		if old == sentinelAsWaiter() {
			if m.state.CompareAndSwap(old, nil) {
				return
			}
			continue
		}

		next := old.next
		var newState *waiter
		if next != nil {
			newState = next
		} else {
			newState = sentinelAsWaiter()
		}

		if m.state.CompareAndSwap(old, newState) {
			close(old.ready)
			return
		}
	}
}

// sentinelAsWaiter reinterprets the lockedSentinel address as a
// *waiter so it can share atomic.Pointer[waiter]'s type. It is never
// dereferenced as a real waiter - every access path checks identity
// against this exact pointer value before touching .next.
func sentinelAsWaiter() *waiter {
	return (*waiter)(lockedSentinel())
}
