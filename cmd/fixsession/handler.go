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
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SilverstreamsAI/NexusFix/builder"
	"github.com/SilverstreamsAI/NexusFix/fixmsg"
	"github.com/SilverstreamsAI/NexusFix/session"
	"github.com/SilverstreamsAI/NexusFix/store"
)

// replHandler is the session.Handler the REPL drives the engine with.
// It fans every callback out to the console display, an optional
// AuditLog, and a small in-memory log the "log" command can replay -
// mirroring fixapp.go's role as the quickfix.Application a teacher
// REPL session was built around.
type replHandler struct {
	logger *zap.Logger
	audit  *store.AuditLog

	mu     sync.Mutex
	appLog []*fixmsg.ParsedMessage
}

func newReplHandler(logger *zap.Logger, audit *store.AuditLog) *replHandler {
	return &replHandler{logger: logger, audit: audit}
}

func (h *replHandler) OnAppMessage(msg *fixmsg.ParsedMessage) {
	h.mu.Lock()
	h.appLog = append(h.appLog, msg)
	if len(h.appLog) > 200 {
		h.appLog = h.appLog[len(h.appLog)-200:]
	}
	h.mu.Unlock()

	msgType, _ := msg.MsgType()
	clOrdID, _ := msg.GetString(11)
	displayAppMessage(msgType, clOrdID, msg.FieldCount())
}

func (h *replHandler) OnStateChange(prev, next session.State) {
	displayStateChange(prev.String(), next.String())

	if h.audit != nil {
		occurredAt := builder.Clock().Format(time.RFC3339Nano)
		if err := h.audit.RecordEvent(occurredAt, "state_change", prev.String(), next.String(), ""); err != nil {
			h.logger.Warn("failed to record state change in audit log", zap.Error(err))
		}
	}
}

func (h *replHandler) OnSend(raw []byte) bool { return true }

func (h *replHandler) OnError(err session.SessionError) {
	h.logger.Warn("session error", zap.String("code", err.Code.String()),
		zap.Uint32("expected", err.Expected), zap.Uint32("received", err.Received))
	displayError(err)
}

func (h *replHandler) OnLogon() {
	displayLogon()
}

func (h *replHandler) OnLogout(reason string) {
	displayLogout(reason)

	if h.audit != nil {
		occurredAt := builder.Clock().Format(time.RFC3339Nano)
		if err := h.audit.RecordEvent(occurredAt, "logout", "", "", reason); err != nil {
			h.logger.Warn("failed to record logout in audit log", zap.Error(err))
		}
	}
}

func (h *replHandler) recentAppMessages(n int) []*fixmsg.ParsedMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > len(h.appLog) {
		n = len(h.appLog)
	}
	return append([]*fixmsg.ParsedMessage(nil), h.appLog[len(h.appLog)-n:]...)
}
