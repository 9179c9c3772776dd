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
	"time"

	"github.com/SilverstreamsAI/NexusFix/builder"
	"github.com/SilverstreamsAI/NexusFix/constants"
	"github.com/SilverstreamsAI/NexusFix/coroutine"
	"github.com/SilverstreamsAI/NexusFix/fixmsg"
	"github.com/SilverstreamsAI/NexusFix/framer"
	"github.com/SilverstreamsAI/NexusFix/sequence"
	"github.com/SilverstreamsAI/NexusFix/session"
)

// connectPhase is phase 1 of Run: establish the transport connection.
func (e *Engine) connectPhase(ctx context.Context, addr string) error {
	if err := e.async.ConnectAsync(ctx, addr); err != nil {
		e.transition(session.EventError)
		return session.SessionError{Code: session.ErrNotConnected}
	}

	e.assembler.Reset()
	e.resetLogoutNotification()
	e.transition(session.EventConnect)
	return nil
}

// logonPhase is phase 2 of Run: send Logon, then poll for the peer's
// Logon (or Logout rejection) until state becomes Active or
// config.LogonTimeout elapses.
func (e *Engine) logonPhase(ctx context.Context) error {
	if e.config.ResetSeqNumOnLogon {
		e.seq.ResetOutbound(1)
		e.seq.ResetInbound(1)
		_ = e.store.Reset()
		e.persistSequenceCounters()
	}

	seqNum := e.seq.TakeOutbound()
	msg := builder.BuildLogon(builder.LogonParams{
		HeartBtInt:      e.config.HeartBtInt,
		Username:        e.config.Username,
		Password:        e.config.Password,
		ResetSeqNumFlag: e.config.ResetSeqNumOnLogon,
	}, e.config.SenderCompID, e.config.TargetCompID, seqNum)

	if err := e.sendRaw(ctx, seqNum, msg); err != nil {
		e.transition(session.EventError)
		return session.SessionError{Code: session.ErrNotConnected}
	}
	e.transition(session.EventLogonSent)

	deadline := time.Now().Add(e.config.LogonTimeout)
	buf := make([]byte, recvBufferSize)

	for e.State() == session.LogonSent {
		if time.Now().After(deadline) {
			break
		}
		if err := e.pollOnce(ctx, buf, deadline); err != nil {
			e.transition(session.EventDisconnect)
			return session.SessionError{Code: session.ErrNotConnected}
		}
	}

	if e.State() != session.Active {
		e.transition(session.EventHeartbeatTimeout)
		return session.SessionError{Code: session.ErrLogonTimeout}
	}

	e.hb.RecordRecv(time.Now())
	e.handler.OnLogon()
	return nil
}

// pollOnce performs one receive attempt for logonPhase's deadline-bounded
// poll loop. It acts only on a Logon (accepted: state becomes Active) or
// a Logout (logon rejected); any other message in the same read is
// dropped without being routed.
func (e *Engine) pollOnce(ctx context.Context, buf []byte, deadline time.Time) error {
	readCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	n, err := e.async.ReceiveAsync(readCtx, buf)
	if err != nil {
		if readCtx.Err() != nil {
			return nil // deadline reached, let caller re-check the loop condition
		}
		return err
	}
	if n == 0 {
		coroutine.Yield()
		return nil
	}

	e.recordInbound(n)
	frames, ferr := e.assembler.Feed(buf[:n])
	if ferr != nil {
		return ferr
	}

	for _, raw := range frames {
		parsed, perr := fixmsg.Parse(raw)
		if perr != nil {
			coroutine.Yield()
			continue
		}

		msgType, _ := parsed.MsgType()
		switch msgType {
		case constants.MsgTypeLogon:
			if seq, ok := parsed.MsgSeqNum(); ok {
				e.seq.AdvanceInbound(seq)
			}
			if hb, ok := parsed.GetInt(constants.TagHeartBtInt); ok {
				e.hb.SetInterval(time.Duration(hb) * time.Second)
			}
			e.persistSequenceCounters()
			e.transition(session.EventLogonReceived)
		case constants.MsgTypeLogout:
			e.transition(session.EventLogonRejected)
		}
	}
	return nil
}

// activePhase is phase 3 of Run: run the heartbeat loop, the message
// receiver loop, and a shutdown wait concurrently; the first to finish
// determines why the active phase ended. Grounded on
// coroutine_session.hpp's active_phase when_any composition.
func (e *Engine) activePhase(ctx context.Context) error {
	hbTask := coroutine.Go(func() (struct{}, error) {
		return struct{}{}, e.heartbeatLoop(ctx)
	})
	rxTask := coroutine.Go(func() (struct{}, error) {
		return struct{}{}, e.receiverLoop(ctx)
	})
	e.rxTask = rxTask
	shutdownTask := coroutine.Go(func() (struct{}, error) {
		return struct{}{}, e.shutdownEvent.Wait(ctx)
	})

	winner, _, werr := coroutine.WhenAny(ctx, hbTask, rxTask, shutdownTask)

	switch winner {
	case 0, 1:
		// Both loops also return nil once the state leaves Active for a
		// reason the other loop caused, so the state tells a heartbeat
		// timeout from a disconnect or a peer Logout.
		if e.State() == session.Error {
			return session.SessionError{Code: session.ErrHeartbeatTimeout}
		}
		if werr != nil || e.State() == session.Active || e.State() == session.Disconnecting {
			return session.SessionError{Code: session.ErrDisconnected}
		}
		return nil
	default:
		return nil
	}
}

func (e *Engine) heartbeatLoop(ctx context.Context) error {
	for e.State() == session.Active {
		now := time.Now()
		if e.hb.HasTimedOut(now) {
			e.transition(session.EventHeartbeatTimeout)
			return nil
		}

		if e.hb.ShouldSendTestRequest(now) {
			if err := e.sendTestRequest(ctx); err != nil {
				return err
			}
		} else if e.hb.ShouldSendHeartbeat(now) {
			if err := e.sendHeartbeat(ctx, ""); err != nil {
				return err
			}
		}

		coroutine.Yield()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (e *Engine) receiverLoop(ctx context.Context) error {
	buf := make([]byte, recvBufferSize)
	for e.State() == session.Active {
		n, err := e.async.ReceiveAsync(ctx, buf)
		if err != nil {
			e.transition(session.EventDisconnect)
			return err
		}
		if n == 0 {
			coroutine.Yield()
			continue
		}

		e.recordInbound(n)
		frames, ferr := e.assembler.Feed(buf[:n])
		if ferr != nil {
			e.handler.OnError(session.SessionError{Code: session.ErrInvalidState})
			e.transition(session.EventDisconnect)
			return ferr
		}

		for _, raw := range frames {
			parsed, perr := fixmsg.Parse(raw)
			if perr != nil {
				e.handler.OnError(session.SessionError{Code: session.ErrInvalidState})
				continue
			}
			e.routeInbound(ctx, parsed)
		}
	}
	return nil
}

// routeInbound classifies the inbound sequence number, handles
// gap/duplicate/too-low cases, then dispatches admin messages to
// handleAdminMessage or forwards application messages to the handler
// (and optional AppSink).
func (e *Engine) routeInbound(ctx context.Context, parsed *fixmsg.ParsedMessage) {
	seq, _ := parsed.MsgSeqNum()
	class := e.seq.Classify(seq, parsed.PossDup())

	switch class {
	case sequence.Expected:
		e.seq.AdvanceInbound(seq)
		e.persistSequenceCounters()
	case sequence.TooLowDuplicate:
		return
	case sequence.TooLowUnexpected:
		e.handler.OnError(session.NewSequenceGapError(e.seq.NextInbound(), seq))
		return
	case sequence.GapDetected:
		e.handleSequenceGap(ctx, seq)
		return
	}

	msgType, _ := parsed.MsgType()
	if constants.IsAdminMsgType(msgType) {
		e.handleAdminMessage(ctx, parsed)
		return
	}

	e.handler.OnAppMessage(parsed)
	if e.sink != nil {
		e.sink.Publish(parsed)
	}
}

func (e *Engine) recordInbound(n int) {
	e.hb.RecordRecv(time.Now())
	e.statsMu.Lock()
	e.stats.MessagesReceived++
	e.stats.BytesReceived += uint64(n)
	e.statsMu.Unlock()
	if e.metrics != nil {
		e.metrics.messagesReceived.WithLabelValues(e.sessionLabel()).Inc()
	}
}

// logoutPhase is phase 4 of Run: if Active, exchange Logout with the
// peer within config.LogoutTimeout; always disconnects the transport
// and raises EventDisconnect on the way out, which ends in Disconnected
// from every state except Error (a heartbeat timeout), which stays Error.
//
// receiverLoop is the only coroutine that reads the transport while the
// session is Active, and activePhase's when_any composition leaves it
// running even when some other task wins the race (shutdown request,
// heartbeat timeout) - losers aren't canceled. This phase relies on that
// same goroutine to deliver the peer's Logout reply rather than opening
// a second, independent read loop here, which would race receiverLoop
// for bytes off the same connection.
func (e *Engine) logoutPhase(ctx context.Context) error {
	if e.State() != session.Active && e.State() != session.LogoutReceived {
		_ = e.async.Disconnect()
		e.transition(session.EventDisconnect)
		return nil
	}

	if e.State() == session.Active {
		seqNum := e.seq.TakeOutbound()
		msg := builder.BuildLogout("", e.config.SenderCompID, e.config.TargetCompID, seqNum)
		_ = e.sendRaw(ctx, seqNum, msg)
		e.transition(session.EventLogoutSent)

		deadline := time.Now().Add(e.config.LogoutTimeout)
		e.waitForReceiverExit(ctx, deadline)
	}

	e.notifyLogout("session ended")
	_ = e.async.Disconnect()
	e.transition(session.EventDisconnect)
	return nil
}

// waitForReceiverExit blocks until receiverLoop's goroutine has stopped
// reading the transport, or deadline elapses - whichever comes first.
// receiverLoop exits on its own once the state leaves Active (which
// logoutPhase itself just caused by sending EventLogoutSent), so this
// returns as soon as it has picked up and routed the peer's reply.
func (e *Engine) waitForReceiverExit(ctx context.Context, deadline time.Time) {
	if e.rxTask == nil {
		return
	}
	waitCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	_, _ = e.rxTask.Wait(waitCtx)
}

func (e *Engine) sendHeartbeat(ctx context.Context, testReqID string) error {
	lock := e.sendMu.Lock()
	seqNum := e.seq.TakeOutbound()
	msg := builder.BuildHeartbeat(testReqID, e.config.SenderCompID, e.config.TargetCompID, seqNum)
	err := e.sendRawLocked(ctx, seqNum, msg)
	lock.Unlock()
	if err == nil {
		e.statsMu.Lock()
		e.stats.HeartbeatsSent++
		e.statsMu.Unlock()
	}
	return err
}

func (e *Engine) sendTestRequest(ctx context.Context) error {
	e.testRequestCount++
	testReqID := builder.NewTestReqID()

	lock := e.sendMu.Lock()
	seqNum := e.seq.TakeOutbound()
	msg := builder.BuildTestRequest(testReqID, e.config.SenderCompID, e.config.TargetCompID, seqNum)
	err := e.sendRawLocked(ctx, seqNum, msg)
	lock.Unlock()
	if err != nil {
		return err
	}

	e.hb.MarkTestRequestSent()
	e.statsMu.Lock()
	e.stats.TestRequestsSent++
	e.statsMu.Unlock()
	return nil
}
