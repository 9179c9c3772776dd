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

import "time"

// Config is the immutable set of parameters a session is run with.
type Config struct {
	SenderCompID string
	TargetCompID string
	BeginString  string // "FIX.4.4"

	HeartBtInt int // seconds, > 0

	LogonTimeout  time.Duration
	LogoutTimeout time.Duration

	MaxReconnectAttempts int // 0 means no retry
	ReconnectInterval    time.Duration

	ResetSeqNumOnLogon bool

	Username string
	Password string
}

// HeartbeatInterval returns HeartBtInt as a time.Duration.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartBtInt) * time.Second
}
