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

// Package builder assembles the admin and application messages the
// session engine sends, each via a small Params struct handed to a
// Build* function - the same pattern prime-fix-md-go/builder/messages.go
// uses, retargeted from quickfix.Message to framer.Message.
package builder

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/SilverstreamsAI/NexusFix/constants"
	"github.com/SilverstreamsAI/NexusFix/framer"
)

// Clock lets tests substitute a deterministic time source. Production
// code uses time.Now; it is a package var rather than a parameter on
// every Build* function so the signatures stay uncluttered, matching
// how the teacher called time.Now().UTC() inline in buildHeader.
var Clock = func() time.Time { return time.Now().UTC() }

func sendingTime() string {
	return Clock().Format(constants.FixTimeFormat)
}

// NewTestReqID generates a unique TestReqID/ClOrdID-style identifier.
// The teacher generated order IDs client-side too; uuid.NewString gives
// a collision-safe identifier without a sequence counter the caller
// would otherwise have to manage.
func NewTestReqID() string {
	return uuid.NewString()
}

// --- Logon (A) ---

// LogonParams contains parameters for a Logon message.
type LogonParams struct {
	HeartBtInt      int    // seconds (required)
	Username        string // optional
	Password        string // optional
	ResetSeqNumFlag bool   // tag 141 - both sides reset to 1 on this Logon
}

// BuildLogon creates a Logon (A) message.
func BuildLogon(params LogonParams, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New().
		SetString(constants.TagEncryptMethod, constants.EncryptMethodNone).
		SetInt(constants.TagHeartBtInt, int64(params.HeartBtInt))

	if params.Username != "" {
		body.SetString(constants.TagUsername, params.Username)
	}
	if params.Password != "" {
		body.SetString(constants.TagPassword, params.Password)
	}
	if params.ResetSeqNumFlag {
		body.SetString(constants.TagResetSeqNumFlag, constants.ResetSeqNumFlagYes)
	}

	return framer.Build(constants.MsgTypeLogon, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- Logout (5) ---

// BuildLogout creates a Logout (5) message with an optional free-text reason.
func BuildLogout(text string, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New()
	if text != "" {
		body.SetString(constants.TagText, text)
	}
	return framer.Build(constants.MsgTypeLogout, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- Heartbeat (0) ---

// BuildHeartbeat creates a Heartbeat (0) message. testReqID is set only
// when this Heartbeat is answering a TestRequest, per the spec's
// request/response pairing.
func BuildHeartbeat(testReqID string, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New()
	if testReqID != "" {
		body.SetString(constants.TagTestReqID, testReqID)
	}
	return framer.Build(constants.MsgTypeHeartbeat, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- TestRequest (1) ---

// BuildTestRequest creates a TestRequest (1) message.
func BuildTestRequest(testReqID string, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New().SetString(constants.TagTestReqID, testReqID)
	return framer.Build(constants.MsgTypeTestRequest, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- ResendRequest (2) ---

// BuildResendRequest creates a ResendRequest (2) message. endSeqNo of 0
// means "to the most recently sent message", matching the store's own
// retrieve_range(begin,end) convention.
func BuildResendRequest(beginSeqNo, endSeqNo uint32, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New().
		SetUint32(constants.TagBeginSeqNo, beginSeqNo).
		SetUint32(constants.TagEndSeqNo, endSeqNo)
	return framer.Build(constants.MsgTypeResendRequest, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- SequenceReset (4) ---

// BuildSequenceReset creates a SequenceReset (4) message. gapFill
// selects whether this is a GapFill (Y) or a hard reset (N) per the
// spec's distinction - GapFill only skips over administratively
// unrecoverable messages and must not itself be treated as a gap.
func BuildSequenceReset(newSeqNo uint32, gapFill bool, senderCompID, targetCompID string, seqNum uint32) []byte {
	flag := constants.GapFillFlagNo
	if gapFill {
		flag = constants.GapFillFlagYes
	}
	body := framer.New().
		SetUint32(constants.TagNewSeqNo, newSeqNo).
		SetString(constants.TagGapFillFlag, flag)
	return framer.Build(constants.MsgTypeSequenceReset, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- Reject (3) ---

// RejectParams contains parameters for a session-level Reject message.
type RejectParams struct {
	RefSeqNum  uint32
	RefTagID   int // 0 means omit
	RefMsgType string
	Reason     string // constants.SessionRejectReason*
	Text       string
}

// BuildReject creates a session-level Reject (3) message referencing
// the offending inbound message.
func BuildReject(params RejectParams, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New().SetUint32(constants.TagRefSeqNum, params.RefSeqNum)
	if params.RefTagID != 0 {
		body.SetString(constants.TagRefTagID, strconv.Itoa(params.RefTagID))
	}
	if params.RefMsgType != "" {
		body.SetString(constants.TagRefMsgType, params.RefMsgType)
	}
	if params.Reason != "" {
		body.SetString(constants.TagSessionRejectReason, params.Reason)
	}
	if params.Text != "" {
		body.SetString(constants.TagText, params.Text)
	}
	return framer.Build(constants.MsgTypeReject, senderCompID, targetCompID, seqNum, sendingTime(), body)
}

// --- New Order Single (D) ---

// NewOrderParams contains parameters for creating a new order.
type NewOrderParams struct {
	Account     string // optional
	ClOrdID     string // required
	Symbol      string // required
	Side        string // "1" buy, "2" sell (required)
	OrdType     string // required
	TimeInForce string // required
	OrderQty    string // conditional
	Price       string // conditional
	StopPx      string // conditional
}

// BuildNewOrderSingle creates a New Order Single (D) message.
//
// Example - limit order:
//
//	params := NewOrderParams{
//	    ClOrdID: "order-1", Symbol: "BTC-USD",
//	    Side: constants.SideBuy, OrdType: constants.OrdTypeLimit,
//	    TimeInForce: constants.TimeInForceGTC,
//	    OrderQty: "0.01", Price: "50000.00",
//	}
//	raw := BuildNewOrderSingle(params, senderCompID, targetCompID, seqNum)
func BuildNewOrderSingle(params NewOrderParams, senderCompID, targetCompID string, seqNum uint32) []byte {
	body := framer.New().
		SetString(constants.TagClOrdID, params.ClOrdID).
		SetString(constants.TagSymbol, params.Symbol).
		SetString(constants.TagSide, params.Side).
		SetString(constants.TagOrdType, params.OrdType).
		SetString(constants.TagTimeInForce, params.TimeInForce).
		SetString(constants.TagTransactTime, sendingTime())

	if params.Account != "" {
		body.SetString(constants.TagAccount, params.Account)
	}
	if params.OrderQty != "" {
		body.SetString(constants.TagOrderQty, params.OrderQty)
	}
	if params.Price != "" {
		body.SetString(constants.TagPrice, params.Price)
	}
	if params.StopPx != "" {
		body.SetString(constants.TagStopPx, params.StopPx)
	}

	return framer.Build(constants.MsgTypeNewOrderSingle, senderCompID, targetCompID, seqNum, sendingTime(), body)
}
