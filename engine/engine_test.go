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
	"sync"
	"testing"
	"time"

	"github.com/SilverstreamsAI/NexusFix/builder"
	"github.com/SilverstreamsAI/NexusFix/fixmsg"
	"github.com/SilverstreamsAI/NexusFix/session"
	"github.com/SilverstreamsAI/NexusFix/store"
	"github.com/SilverstreamsAI/NexusFix/transport"
)

// recordingHandler is a session.Handler double that records every
// callback it receives, for assertions without racing on output.
type recordingHandler struct {
	mu          sync.Mutex
	appMessages []*fixmsg.ParsedMessage
	transitions []session.State
	errors      []session.SessionError
	logons      int
	logouts     []string
}

func (h *recordingHandler) OnAppMessage(msg *fixmsg.ParsedMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appMessages = append(h.appMessages, msg)
}

func (h *recordingHandler) OnStateChange(prev, next session.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.transitions = append(h.transitions, next)
}

func (h *recordingHandler) OnSend(raw []byte) bool { return true }

func (h *recordingHandler) OnError(err session.SessionError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
}

func (h *recordingHandler) OnLogon() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logons++
}

func (h *recordingHandler) OnLogout(reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logouts = append(h.logouts, reason)
}

func (h *recordingHandler) lastState() session.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.transitions) == 0 {
		return session.Disconnected
	}
	return h.transitions[len(h.transitions)-1]
}

func testConfig() session.Config {
	return session.Config{
		SenderCompID:         "CLIENT",
		TargetCompID:         "EXCHANGE",
		BeginString:          "FIX.4.4",
		HeartBtInt:           30,
		LogonTimeout:         500 * time.Millisecond,
		LogoutTimeout:        500 * time.Millisecond,
		MaxReconnectAttempts: 3,
		ReconnectInterval:    10 * time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestEngine_LogonSuccessThenGracefulShutdown(t *testing.T) {
	cfg := testConfig()
	fake := newFakeTransport()
	handler := &recordingHandler{}
	e := New(cfg, handler, transport.NewAsyncTransport(fake))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(ctx, "fake:0") }()

	waitFor(t, time.Second, func() bool { return len(fake.takeOutboundPeek()) >= 1 })

	reply := builder.BuildLogon(builder.LogonParams{HeartBtInt: 30}, cfg.TargetCompID, cfg.SenderCompID, 1)
	fake.pushInbound(reply)

	waitFor(t, time.Second, func() bool { return e.State() == session.Active })
	if handler.logons != 1 {
		t.Fatalf("expected exactly one OnLogon callback, got %d", handler.logons)
	}

	e.RequestShutdown()

	waitFor(t, time.Second, func() bool { return e.State() == session.LogoutPending })
	logoutReply := builder.BuildLogout("", cfg.TargetCompID, cfg.SenderCompID, 2)
	fake.pushInbound(logoutReply)

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after graceful shutdown")
	}

	if e.State() != session.Disconnected {
		t.Fatalf("expected final state Disconnected, got %v", e.State())
	}
	if len(handler.logouts) != 1 {
		t.Fatalf("expected exactly one OnLogout callback, got %d: %v", len(handler.logouts), handler.logouts)
	}
}

// TestEngine_ReceiverLoopReassemblesSplitMessage verifies that a FIX
// message delivered across two separate transport reads is reassembled
// into one complete message before being routed, instead of being
// parsed as a truncated fragment.
func TestEngine_ReceiverLoopReassemblesSplitMessage(t *testing.T) {
	cfg := testConfig()
	fake := newFakeTransport()
	handler := &recordingHandler{}
	e := New(cfg, handler, transport.NewAsyncTransport(fake))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(ctx, "fake:0") }()

	waitFor(t, time.Second, func() bool { return len(fake.takeOutboundPeek()) >= 1 })
	fake.pushInbound(builder.BuildLogon(builder.LogonParams{HeartBtInt: 30}, cfg.TargetCompID, cfg.SenderCompID, 1))
	waitFor(t, time.Second, func() bool { return e.State() == session.Active })

	hb := builder.BuildHeartbeat("", cfg.TargetCompID, cfg.SenderCompID, 2)
	split := len(hb) / 2
	fake.pushInbound(hb[:split])
	fake.pushInbound(hb[split:])

	waitFor(t, time.Second, func() bool { return e.Stats().HeartbeatsReceived == 1 })
	if len(handler.errors) != 0 {
		t.Fatalf("expected no parse errors from a reassembled split message, got %v", handler.errors)
	}

	e.RequestShutdown()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}
}

// TestEngine_ReceiverLoopSplitsCoalescedMessages verifies that two FIX
// messages delivered back-to-back in a single transport read are split
// into two complete messages rather than being handed to the parser as
// one oversized blob.
func TestEngine_ReceiverLoopSplitsCoalescedMessages(t *testing.T) {
	cfg := testConfig()
	fake := newFakeTransport()
	handler := &recordingHandler{}
	e := New(cfg, handler, transport.NewAsyncTransport(fake))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(ctx, "fake:0") }()

	waitFor(t, time.Second, func() bool { return len(fake.takeOutboundPeek()) >= 1 })
	fake.pushInbound(builder.BuildLogon(builder.LogonParams{HeartBtInt: 30}, cfg.TargetCompID, cfg.SenderCompID, 1))
	waitFor(t, time.Second, func() bool { return e.State() == session.Active })

	first := builder.BuildHeartbeat("", cfg.TargetCompID, cfg.SenderCompID, 2)
	second := builder.BuildHeartbeat("", cfg.TargetCompID, cfg.SenderCompID, 3)
	coalesced := append(append([]byte(nil), first...), second...)
	fake.pushInbound(coalesced)

	waitFor(t, time.Second, func() bool { return e.Stats().HeartbeatsReceived == 2 })
	if len(handler.errors) != 0 {
		t.Fatalf("expected no parse errors from a coalesced read, got %v", handler.errors)
	}

	e.RequestShutdown()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}
}

func TestEngine_LogonTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.LogonTimeout = 50 * time.Millisecond
	fake := newFakeTransport()
	handler := &recordingHandler{}
	e := New(cfg, handler, transport.NewAsyncTransport(fake))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := e.Run(ctx, "fake:0")
	if err == nil {
		t.Fatal("expected an error from an unanswered Logon")
	}
	sessErr, ok := err.(session.SessionError)
	if !ok || sessErr.Code != session.ErrLogonTimeout {
		t.Fatalf("expected ErrLogonTimeout, got %v", err)
	}
}

func TestEngine_SequenceGapTriggersResendRequest(t *testing.T) {
	cfg := testConfig()
	fake := newFakeTransport()
	handler := &recordingHandler{}
	e := New(cfg, handler, transport.NewAsyncTransport(fake))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(ctx, "fake:0") }()

	waitFor(t, time.Second, func() bool { return len(fake.takeOutboundPeek()) >= 1 })
	fake.pushInbound(builder.BuildLogon(builder.LogonParams{HeartBtInt: 30}, cfg.TargetCompID, cfg.SenderCompID, 1))
	waitFor(t, time.Second, func() bool { return e.State() == session.Active })

	// expected inbound is now 2; jump straight to 4, leaving a gap of [2,3].
	gapMsg := builder.BuildHeartbeat("", cfg.TargetCompID, cfg.SenderCompID, 4)
	fake.pushInbound(gapMsg)

	var resendFrame []byte
	waitFor(t, time.Second, func() bool {
		for _, frame := range fake.takeOutbound() {
			parsed, err := fixmsg.Parse(frame)
			if err != nil {
				continue
			}
			msgType, _ := parsed.MsgType()
			if msgType == "2" {
				resendFrame = frame
			}
		}
		return resendFrame != nil
	})

	parsed, err := fixmsg.Parse(resendFrame)
	if err != nil {
		t.Fatalf("failed to parse resend request: %v", err)
	}
	begin, _ := parsed.GetUint32(7)
	end, _ := parsed.GetUint32(16)
	if begin != 2 || end != 3 {
		t.Fatalf("expected ResendRequest [2,3], got [%d,%d]", begin, end)
	}

	e.RequestShutdown()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}
}

func TestEngine_ResendRequestServedFromStore(t *testing.T) {
	cfg := testConfig()
	fake := newFakeTransport()
	handler := &recordingHandler{}
	msgStore := store.NewMemoryStore(100)
	e := New(cfg, handler, transport.NewAsyncTransport(fake), WithMessageStore(msgStore))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run(ctx, "fake:0") }()

	waitFor(t, time.Second, func() bool { return len(fake.takeOutboundPeek()) >= 1 })
	fake.pushInbound(builder.BuildLogon(builder.LogonParams{HeartBtInt: 30}, cfg.TargetCompID, cfg.SenderCompID, 1))
	waitFor(t, time.Second, func() bool { return e.State() == session.Active })

	// Engine's own Logon consumed seq 1, so a subsequent send (the test
	// request below) lands at seq 2 and is stored there.
	fake.pushInbound(builder.BuildTestRequest("probe", cfg.TargetCompID, cfg.SenderCompID, 2))

	waitFor(t, time.Second, func() bool {
		_, err := msgStore.Retrieve(2)
		return err == nil
	})
	fake.takeOutbound() // drain the original Logon + Heartbeat-reply frames

	resend := builder.BuildResendRequest(2, 2, cfg.TargetCompID, cfg.SenderCompID, 3)
	fake.pushInbound(resend)

	var replayed []byte
	waitFor(t, time.Second, func() bool {
		for _, frame := range fake.takeOutbound() {
			parsed, err := fixmsg.Parse(frame)
			if err != nil {
				continue
			}
			seq, _ := parsed.MsgSeqNum()
			if seq == 2 {
				replayed = frame
			}
		}
		return replayed != nil
	})

	if replayed == nil {
		t.Fatal("expected stored message at seq 2 to be replayed")
	}

	e.RequestShutdown()
	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}
}
