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

	"github.com/SilverstreamsAI/NexusFix/builder"
	"github.com/SilverstreamsAI/NexusFix/constants"
	"github.com/SilverstreamsAI/NexusFix/fixmsg"
	"github.com/SilverstreamsAI/NexusFix/session"
)

// handleAdminMessage dispatches an inbound admin message to the handler
// matching its MsgType, per spec §4.6's admin routing table.
func (e *Engine) handleAdminMessage(ctx context.Context, parsed *fixmsg.ParsedMessage) {
	msgType, _ := parsed.MsgType()
	switch msgType {
	case constants.MsgTypeHeartbeat:
		e.statsMu.Lock()
		e.stats.HeartbeatsReceived++
		e.statsMu.Unlock()

	case constants.MsgTypeTestRequest:
		e.handleTestRequest(ctx, parsed)

	case constants.MsgTypeLogout:
		e.handleLogout(parsed)

	case constants.MsgTypeResendRequest:
		e.handleResendRequest(ctx, parsed)

	case constants.MsgTypeSequenceReset:
		e.handleSequenceReset(parsed)

	case constants.MsgTypeReject:
		e.handler.OnError(session.SessionError{Code: session.ErrInvalidState})
	}
}

// handleTestRequest answers a TestRequest by echoing a Heartbeat
// carrying the peer's TestReqID back, so it can match the reply to its
// outstanding request.
func (e *Engine) handleTestRequest(ctx context.Context, parsed *fixmsg.ParsedMessage) {
	testReqID, _ := parsed.GetString(constants.TagTestReqID)
	_ = e.sendHeartbeat(ctx, testReqID)
}

// handleLogout records the peer-initiated logout and notifies the
// handler; the orchestrator's logoutPhase observes the resulting state
// transition and tears down the transport.
func (e *Engine) handleLogout(parsed *fixmsg.ParsedMessage) {
	text, _ := parsed.GetString(constants.TagText)
	e.transition(session.EventLogoutReceived)
	e.notifyLogout(text)
}

// handleSequenceReset applies a SequenceReset (tag 36) to the inbound
// counter. Used for both hard resets and gap fills - the distinction is
// in whether GapFillFlag was set, which doesn't change how the new
// value is applied here.
func (e *Engine) handleSequenceReset(parsed *fixmsg.ParsedMessage) {
	e.statsMu.Lock()
	e.stats.SequenceResets++
	e.statsMu.Unlock()

	if newSeq, ok := parsed.GetUint32(constants.TagNewSeqNo); ok {
		e.seq.ResetInbound(newSeq)
	}
}

// handleResendRequest serves a peer's ResendRequest from the message
// store when one is configured and holds the range; otherwise it falls
// back to a SequenceReset gap fill advancing the peer straight past the
// range it asked for.
func (e *Engine) handleResendRequest(ctx context.Context, parsed *fixmsg.ParsedMessage) {
	begin, ok1 := parsed.GetUint32(constants.TagBeginSeqNo)
	end, ok2 := parsed.GetUint32(constants.TagEndSeqNo)
	if !ok1 || !ok2 {
		return
	}

	if e.store != nil {
		if messages, err := e.store.RetrieveRange(begin, end); err == nil && len(messages) > 0 {
			for _, raw := range messages {
				_ = e.sendPreassembled(ctx, raw)
			}
			return
		}
	}

	lock := e.sendMu.Lock()
	seqNum := e.seq.TakeOutbound()
	msg := builder.BuildSequenceReset(e.seq.NextOutbound(), true, e.config.SenderCompID, e.config.TargetCompID, seqNum)
	err := e.sendRawLocked(ctx, seqNum, msg)
	lock.Unlock()
	_ = err
}

// handleSequenceGap issues a ResendRequest covering the inclusive range
// reported by sequence.Manager.GapRange for the observed sequence
// number.
func (e *Engine) handleSequenceGap(ctx context.Context, observedSeq uint32) {
	if e.metrics != nil {
		e.metrics.sequenceGaps.WithLabelValues(e.sessionLabel()).Inc()
	}

	begin, end := e.seq.GapRange(observedSeq)

	lock := e.sendMu.Lock()
	seqNum := e.seq.TakeOutbound()
	msg := builder.BuildResendRequest(begin, end, e.config.SenderCompID, e.config.TargetCompID, seqNum)
	err := e.sendRawLocked(ctx, seqNum, msg)
	lock.Unlock()
	if err == nil {
		e.statsMu.Lock()
		e.stats.ResendRequestsSent++
		e.statsMu.Unlock()
	}
}

// sendPreassembled resends a message exactly as it was originally built
// and stored, without taking a new sequence number - used when replaying
// from the message store in response to a ResendRequest.
func (e *Engine) sendPreassembled(ctx context.Context, raw []byte) error {
	lock := e.sendMu.Lock()
	defer lock.Unlock()

	e.handler.OnSend(raw)
	_, err := e.async.SendAsync(ctx, raw)
	if err != nil {
		return err
	}

	e.statsMu.Lock()
	e.stats.MessagesSent++
	e.stats.BytesSent += uint64(len(raw))
	e.statsMu.Unlock()
	return nil
}
