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

// Package heartbeat implements the three timing predicates the
// orchestrator's heartbeat_loop evaluates every tick, grounded on
// nexusfix/session/coroutine_session.hpp's heartbeat_loop: send a
// Heartbeat after T seconds of outbound silence, send a TestRequest
// after 1.2T seconds of inbound silence (once), and declare the
// session timed out after 2T seconds of inbound silence.
package heartbeat

import "time"

// Timer tracks the last send/receive instants and the configured
// interval. It holds no goroutine or timer of its own - the engine
// polls it on each heartbeat_loop tick, matching the original's
// cooperative-sleep-then-check structure rather than wiring a
// time.Timer per predicate.
type Timer struct {
	interval time.Duration

	lastSend    time.Time
	lastRecv    time.Time
	testPending bool
}

// New returns a Timer for the given HeartBtInt interval. Both
// lastSend/lastRecv are seeded to now, so the first Logon exchange
// doesn't immediately appear overdue.
func New(interval time.Duration, now time.Time) *Timer {
	return &Timer{interval: interval, lastSend: now, lastRecv: now}
}

// Interval returns the configured heartbeat interval.
func (t *Timer) Interval() time.Duration { return t.interval }

// SetInterval updates the configured interval, for when the peer's
// Logon negotiates a different HeartBtInt than the one this session
// proposed.
func (t *Timer) SetInterval(interval time.Duration) { t.interval = interval }

// RecordSend marks that a message was just sent, resetting the
// should-send-heartbeat clock. Any outbound message counts, not just
// Heartbeat itself - the spec's intent is "silence", not "specifically
// no Heartbeat sent".
func (t *Timer) RecordSend(now time.Time) { t.lastSend = now }

// RecordRecv marks that a message was just received, resetting both
// the should-send-test-request and has-timed-out clocks, and clearing
// any pending TestRequest since the counterparty has proven it's alive.
func (t *Timer) RecordRecv(now time.Time) {
	t.lastRecv = now
	t.testPending = false
}

// MarkTestRequestSent records that a TestRequest has been sent so
// ShouldSendTestRequest doesn't fire again every tick while waiting for
// the answering Heartbeat.
func (t *Timer) MarkTestRequestSent() { t.testPending = true }

// ShouldSendHeartbeat reports whether interval seconds have elapsed
// since the last outbound message.
func (t *Timer) ShouldSendHeartbeat(now time.Time) bool {
	return now.Sub(t.lastSend) >= t.interval
}

// ShouldSendTestRequest reports whether 1.2x interval seconds have
// elapsed since the last inbound message and no TestRequest is already
// outstanding.
func (t *Timer) ShouldSendTestRequest(now time.Time) bool {
	if t.testPending {
		return false
	}
	threshold := time.Duration(float64(t.interval) * 1.2)
	return now.Sub(t.lastRecv) >= threshold
}

// HasTimedOut reports whether 2x interval seconds have elapsed since
// the last inbound message, meaning the counterparty must be
// considered unresponsive regardless of TestRequest state.
func (t *Timer) HasTimedOut(now time.Time) bool {
	return now.Sub(t.lastRecv) >= 2*t.interval
}
