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

package main

import (
	"fmt"
	"log"

	"github.com/SilverstreamsAI/NexusFix/session"
)

func displayHelp() {
	fmt.Print(`Commands:
  --- Session ---
  status                         - Show session state and counters
  log [n]                        - Show the last n received app messages (default 10)

  --- Order Entry ---
  order <buy|sell> <symbol> <qty> [price] [--type market|limit] [--tif gtc|ioc|fok|gtd]
  testrequest                    - Send an ad hoc TestRequest
  logout                         - Begin a graceful logout (words after it are ignored)

  --- General ---
  help                           - Show this help message
  version
  exit, quit

Examples:
  order buy BTC-USD 0.01 50000   - Limit buy 0.01 BTC at $50k
  order sell ETH-USD 1.5 --type market
  logout
`)
}

func displayConnectionSuccess(senderCompID, targetCompID, addr string) {
	log.Printf("✓ connected %s -> %s at %s", senderCompID, targetCompID, addr)
}

func displayStateChange(prev, next string) {
	log.Printf("session %s -> %s", prev, next)
}

func displayLogon() {
	log.Println("✓ logon accepted, session Active")
}

func displayLogout(reason string) {
	if reason == "" {
		log.Println("session logged out")
		return
	}
	log.Printf("session logged out: %s", reason)
}

func displayError(err session.SessionError) {
	fmt.Printf("! session error: %s\n", err.Error())
}

func displayAppMessage(msgType, clOrdID string, fieldCount int) {
	if clOrdID != "" {
		fmt.Printf("< app message type=%s clOrdID=%s fields=%d\n", msgType, clOrdID, fieldCount)
		return
	}
	fmt.Printf("< app message type=%s fields=%d\n", msgType, fieldCount)
}

func displayStatus(state session.State, stats session.Stats, addr, senderCompID, targetCompID string) {
	fmt.Printf("\nSession: %s -> %s at %s (%s)\n", senderCompID, targetCompID, addr, state)
	fmt.Print(`┌──────────────────────┬─────────────┐
`)
	rows := []struct {
		label string
		value uint64
	}{
		{"Messages sent", stats.MessagesSent},
		{"Messages received", stats.MessagesReceived},
		{"Bytes sent", stats.BytesSent},
		{"Bytes received", stats.BytesReceived},
		{"Heartbeats sent", stats.HeartbeatsSent},
		{"Test requests sent", stats.TestRequestsSent},
		{"Resend requests sent", stats.ResendRequestsSent},
		{"Sequence resets", stats.SequenceResets},
	}
	for _, r := range rows {
		fmt.Printf("│ %-20s │ %11d │\n", r.label, r.value)
	}
	fmt.Println("└──────────────────────┴─────────────┘")
}

func displayAppLog(messages []string) {
	if len(messages) == 0 {
		fmt.Println("No application messages received yet")
		return
	}
	for _, m := range messages {
		fmt.Println(m)
	}
}
