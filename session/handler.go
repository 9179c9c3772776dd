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

import "github.com/SilverstreamsAI/NexusFix/fixmsg"

// Handler receives callbacks from the orchestrator at well-defined
// points in the session lifecycle. Implementations must not block and
// must not panic - this cannot be enforced by the type system, only
// documented, matching the teacher's FixApp callback contract.
type Handler interface {
	// OnAppMessage is called for a parsed non-admin message whose
	// sequence number has been validated as Expected.
	OnAppMessage(msg *fixmsg.ParsedMessage)

	// OnStateChange is called after every transition that changes the
	// state value, synchronously, with the previous and new state.
	OnStateChange(prev, next State)

	// OnSend is an optional pre-send inspection hook. Its return value
	// is exposed for audit only; returning false does not abort the
	// send.
	OnSend(raw []byte) bool

	// OnError surfaces a non-fatal error for logging/metrics.
	OnError(err SessionError)

	// OnLogon is called once the peer's Logon is accepted and state
	// becomes Active.
	OnLogon()

	// OnLogout is called on graceful or peer-initiated logout, with
	// the reason text (possibly empty).
	OnLogout(reason string)
}
