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

package engine

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the Prometheus collectors a single process-wide
// registry tracks across every Engine instance it drives. Labeled by
// session (SenderCompID-TargetCompID) so a process running multiple
// sessions reports them separately.
type metrics struct {
	messagesSent     *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec
	sequenceGaps     *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	stateTransitions *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexusfix_messages_sent_total",
			Help: "Total FIX messages sent by session.",
		}, []string{"session"}),
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexusfix_messages_received_total",
			Help: "Total FIX messages received by session.",
		}, []string{"session"}),
		sequenceGaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexusfix_sequence_gaps_total",
			Help: "Total inbound sequence gaps detected by session.",
		}, []string{"session"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexusfix_reconnect_attempts_total",
			Help: "Total reconnect attempts by session.",
		}, []string{"session"}),
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexusfix_state_transitions_total",
			Help: "Total session state transitions by session and target state.",
		}, []string{"session", "state"}),
	}
}

// MustRegister registers every collector with reg. Call once per
// process; passing the same registry for multiple Engines is fine since
// the label value distinguishes them.
func (m *metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.messagesSent, m.messagesReceived, m.sequenceGaps, m.reconnects, m.stateTransitions)
}
