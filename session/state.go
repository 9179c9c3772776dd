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

// Package session defines the FIX session state machine, configuration,
// handler contract, and error taxonomy that the engine package drives.
// Grounded on nexusfix's coroutine_session.hpp state/event model.
package session

// State is one value of the session lifecycle.
type State int

const (
	Disconnected State = iota
	SocketConnected
	LogonSent
	LogonReceived
	Active
	LogoutPending
	LogoutReceived
	Disconnecting
	Error
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case SocketConnected:
		return "SocketConnected"
	case LogonSent:
		return "LogonSent"
	case LogonReceived:
		return "LogonReceived"
	case Active:
		return "Active"
	case LogoutPending:
		return "LogoutPending"
	case LogoutReceived:
		return "LogoutReceived"
	case Disconnecting:
		return "Disconnecting"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event drives state transitions. Only the orchestrator raises events.
type Event int

const (
	EventConnect Event = iota
	EventLogonSent
	EventLogonReceived
	EventLogonRejected
	EventLogoutSent
	EventLogoutReceived
	EventDisconnect
	EventHeartbeatTimeout
	EventError
)

// NextState computes the transition table from spec §4.6. A transition
// absent from the table is a no-op: returning from is the idiomatic
// way to say "this event has no effect in this state".
func NextState(from State, event Event) State {
	if event == EventError {
		return Error
	}

	switch from {
	case Disconnected:
		if event == EventConnect {
			return SocketConnected
		}
	case SocketConnected:
		if event == EventLogonSent {
			return LogonSent
		}
	case LogonSent:
		switch event {
		case EventLogonReceived:
			return Active
		case EventLogonRejected:
			return Disconnecting
		case EventHeartbeatTimeout:
			return Error
		}
	case Active:
		switch event {
		case EventLogoutSent:
			return LogoutPending
		case EventLogoutReceived:
			return LogoutReceived
		case EventHeartbeatTimeout:
			return Error
		case EventDisconnect:
			return Disconnecting
		}
	case LogoutPending:
		switch event {
		case EventLogoutReceived:
			return Disconnecting
		case EventDisconnect:
			return Disconnected
		}
	case LogoutReceived:
		if event == EventDisconnect {
			return Disconnected
		}
	case Disconnecting:
		if event == EventDisconnect {
			return Disconnected
		}
	}

	return from
}
