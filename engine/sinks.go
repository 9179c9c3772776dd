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

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SilverstreamsAI/NexusFix/constants"
	"github.com/SilverstreamsAI/NexusFix/fixmsg"
)

// AppSink receives a copy of every application message the engine
// forwards to its Handler's OnAppMessage, for fanout to systems
// downstream of the session itself.
type AppSink interface {
	Publish(msg *fixmsg.ParsedMessage)
}

// KafkaSink republishes application messages onto a Kafka topic, keyed
// by ClOrdID when present so a given order's messages land on the same
// partition.
type KafkaSink struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// kafkaRecord is the JSON envelope written to the topic.
type kafkaRecord struct {
	MsgType   string `json:"msg_type"`
	MsgSeqNum uint32 `json:"msg_seq_num"`
	ClOrdID   string `json:"cl_ord_id,omitempty"`
}

// NewKafkaSink returns a KafkaSink writing to topic on broker.
func NewKafkaSink(broker, topic string, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaSink{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers: []string{broker},
			Topic:   topic,
		}),
		logger: logger,
	}
}

// Publish writes msg's envelope to Kafka, logging (not failing) on error.
// The write is synchronous on the caller's goroutine, so a slow or
// unavailable broker holds up the session's receive loop until the write
// completes or fails.
func (s *KafkaSink) Publish(msg *fixmsg.ParsedMessage) {
	msgType, _ := msg.MsgType()
	seqNum, _ := msg.MsgSeqNum()
	clOrdID, _ := msg.GetString(constants.TagClOrdID)

	rec := kafkaRecord{MsgType: msgType, MsgSeqNum: seqNum, ClOrdID: clOrdID}
	body, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("kafka sink: failed to marshal record", zap.Error(err))
		return
	}

	key := []byte(clOrdID)
	if err := s.writer.WriteMessages(context.Background(), kafka.Message{Key: key, Value: body}); err != nil {
		s.logger.Warn("kafka sink: publish failed", zap.Error(err))
	}
}

// Close shuts down the underlying Kafka writer.
func (s *KafkaSink) Close() error { return s.writer.Close() }

// Monitor serves a read-only websocket feed of session state
// transitions, which an Engine broadcasts on every state change, and of
// any stats snapshot passed to BroadcastStats, for an operator dashboard
// observing a running Engine without touching its FIX connection. The
// Engine itself does not send stats snapshots.
type Monitor struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewMonitor returns a Monitor ready to accept websocket upgrades via
// ServeHTTP and broadcast to every connected client.
func NewMonitor(logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
		clients:  make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and registers it for broadcasts
// until the client disconnects.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("monitor: upgrade failed", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.clients, conn)
		m.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// monitorEvent is the JSON envelope broadcast to every connected client.
type monitorEvent struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

// BroadcastStateChange notifies every connected client of a state
// transition.
func (m *Monitor) BroadcastStateChange(prev, next string) {
	m.broadcast(monitorEvent{Kind: "state_change", Data: map[string]string{"from": prev, "to": next}})
}

// BroadcastStats notifies every connected client of a stats snapshot.
func (m *Monitor) BroadcastStats(stats interface{}) {
	m.broadcast(monitorEvent{Kind: "stats", Data: stats})
}

func (m *Monitor) broadcast(event monitorEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			m.logger.Debug("monitor: broadcast write failed, dropping client", zap.Error(err))
			_ = conn.Close()
			delete(m.clients, conn)
		}
	}
}
