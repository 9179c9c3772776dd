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

// Package sequence tracks inbound and outbound FIX sequence numbers
// and classifies each inbound message as Expected, TooLow, or
// GapDetected. The classification logic follows
// nexusfix/session/coroutine_session.hpp's handle_sequence_gap /
// handle_sequence_reset routing, reimplemented as a standalone,
// testable component rather than inline in the orchestrator.
package sequence

import "fmt"

// Classification is the outcome of checking an inbound MsgSeqNum
// against the manager's expected next_inbound value.
type Classification int

const (
	// Expected means seq == next_inbound; the counter advances by one.
	Expected Classification = iota
	// TooLowDuplicate means seq < next_inbound and PossDupFlag=Y - a
	// legitimate resend of an already-processed message, to be
	// silently ignored rather than treated as an error.
	TooLowDuplicate
	// TooLowUnexpected means seq < next_inbound without PossDupFlag -
	// a protocol violation the caller should surface via Reject/Logout.
	TooLowUnexpected
	// GapDetected means seq > next_inbound - one or more messages were
	// missed and a ResendRequest should be issued.
	GapDetected
)

func (c Classification) String() string {
	switch c {
	case Expected:
		return "Expected"
	case TooLowDuplicate:
		return "TooLowDuplicate"
	case TooLowUnexpected:
		return "TooLowUnexpected"
	case GapDetected:
		return "GapDetected"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// Manager tracks the next expected inbound sequence number and the
// next outbound sequence number to assign. It holds no lock of its own;
// the engine serializes access to it from a single goroutine per the
// spec's ordering guarantees (see coroutine package for where
// concurrent senders are funneled through AsyncMutex instead).
type Manager struct {
	nextInbound  uint32
	nextOutbound uint32
}

// New returns a Manager with both counters starting at 1, the FIX
// convention for a fresh session (MsgSeqNumInit).
func New() *Manager {
	return &Manager{nextInbound: 1, nextOutbound: 1}
}

// NextInbound returns the sequence number expected on the next inbound
// message.
func (m *Manager) NextInbound() uint32 { return m.nextInbound }

// NextOutbound returns the sequence number to assign to the next
// outbound message, without consuming it.
func (m *Manager) NextOutbound() uint32 { return m.nextOutbound }

// Classify compares seq against the expected inbound counter. It does
// not mutate state; callers call AdvanceInbound separately once they've
// decided how to handle the classification, so a message that turns
// out to be unprocessable (e.g. fails a later validation) doesn't
// silently advance the counter.
func (m *Manager) Classify(seq uint32, possDup bool) Classification {
	switch {
	case seq == m.nextInbound:
		return Expected
	case seq < m.nextInbound:
		if possDup {
			return TooLowDuplicate
		}
		return TooLowUnexpected
	default:
		return GapDetected
	}
}

// AdvanceInbound sets the next expected inbound sequence number to
// seq+1. Called after successfully processing an Expected message, or
// after a SequenceReset sets the counter directly via ResetInbound.
func (m *Manager) AdvanceInbound(seq uint32) { m.nextInbound = seq + 1 }

// ResetInbound sets the next expected inbound sequence number directly,
// for SequenceReset (tag 36) handling - both hard resets and gap fills
// use this, the distinction is in how the caller arrived at newSeqNo.
func (m *Manager) ResetInbound(newSeqNo uint32) { m.nextInbound = newSeqNo }

// ResetOutbound sets the next outbound sequence number directly, for a
// Logon exchange that negotiates ResetSeqNumFlag.
func (m *Manager) ResetOutbound(newSeqNo uint32) { m.nextOutbound = newSeqNo }

// TakeOutbound returns the next outbound sequence number and advances
// the counter. Every outbound message, admin or application, consumes
// exactly one sequence number via this call - callers must not
// construct a sequence number any other way.
func (m *Manager) TakeOutbound() uint32 {
	n := m.nextOutbound
	m.nextOutbound++
	return n
}

// GapRange returns the inclusive [begin,end] span of sequence numbers
// missing between the expected counter and an observed higher seq, for
// use in a ResendRequest's BeginSeqNo/EndSeqNo fields: begin is the
// expected counter, end is observedSeq-1 - the message at observedSeq
// itself arrived and is not part of the gap.
func (m *Manager) GapRange(observedSeq uint32) (begin, end uint32) {
	return m.nextInbound, observedSeq - 1
}
