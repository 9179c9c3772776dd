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

// Stats accumulates counters over a session's lifetime, snapshotted
// for metrics/monitoring rather than read under lock on the hot path.
type Stats struct {
	MessagesSent       uint64
	MessagesReceived   uint64
	BytesSent          uint64
	BytesReceived      uint64
	HeartbeatsSent     uint64
	HeartbeatsReceived uint64
	TestRequestsSent   uint64
	ResendRequestsSent uint64
	SequenceResets     uint64
}
