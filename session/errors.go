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

package session

import "fmt"

// ErrorCode enumerates the session error taxonomy from spec §7.
type ErrorCode int

const (
	ErrNotConnected ErrorCode = iota
	ErrInvalidState
	ErrSequenceGap
	ErrHeartbeatTimeout
	ErrLogonTimeout
	ErrDisconnected
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotConnected:
		return "NotConnected"
	case ErrInvalidState:
		return "InvalidState"
	case ErrSequenceGap:
		return "SequenceGap"
	case ErrHeartbeatTimeout:
		return "HeartbeatTimeout"
	case ErrLogonTimeout:
		return "LogonTimeout"
	case ErrDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// SessionError is the error type surfaced on the hot path and passed
// to Handler.OnError. Expected/Received are only meaningful for
// ErrSequenceGap.
type SessionError struct {
	Code     ErrorCode
	Expected uint32
	Received uint32
}

func (e SessionError) Error() string {
	if e.Code == ErrSequenceGap {
		return fmt.Sprintf("session: %s (expected=%d received=%d)", e.Code, e.Expected, e.Received)
	}
	return fmt.Sprintf("session: %s", e.Code)
}

// NewSequenceGapError builds a SessionError carrying the expected and
// received sequence numbers for a gap or too-low-unexpected event.
func NewSequenceGapError(expected, received uint32) SessionError {
	return SessionError{Code: ErrSequenceGap, Expected: expected, Received: received}
}
