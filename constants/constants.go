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

// Package constants holds FIX 4.4 message type codes, tag numbers and
// enumerated field values used by the session engine. Unlike quickfix's
// typed Tag wrapper, tags here are plain uint16 - the engine's own field
// table is keyed by uint16 throughout, so no conversion is needed at the
// hot path boundary.
package constants

// --- Message Types (Tag 35) ---
const (
	// Admin messages
	MsgTypeLogon          = "A"
	MsgTypeLogout         = "5"
	MsgTypeHeartbeat      = "0"
	MsgTypeTestRequest    = "1"
	MsgTypeResendRequest  = "2"
	MsgTypeSequenceReset  = "4"
	MsgTypeReject         = "3"
	MsgTypeBusinessReject = "j" // application-level; not in IsAdminMsgType

	// Application messages
	MsgTypeNewOrderSingle     = "D"
	MsgTypeOrderCancelRequest = "F"
	MsgTypeOrderCancelReplace = "G"
	MsgTypeOrderStatusRequest = "H"
	MsgTypeExecutionReport    = "8"
	MsgTypeOrderCancelReject  = "9"
)

// IsAdminMsgType reports whether msgType is one of the session-level
// administrative messages (Heartbeat, TestRequest, ResendRequest,
// SequenceReset, Logon, Logout, Reject) as opposed to an application
// message.
func IsAdminMsgType(msgType string) bool {
	switch msgType {
	case MsgTypeHeartbeat, MsgTypeTestRequest, MsgTypeResendRequest,
		MsgTypeSequenceReset, MsgTypeLogon, MsgTypeLogout, MsgTypeReject:
		return true
	default:
		return false
	}
}

// --- Protocol Constants ---
const (
	FixTimeFormat       = "20060102-15:04:05.000"
	FixBeginStringFix44 = "FIX.4.4"
	EncryptMethodNone   = "0"
	MsgSeqNumInit       = uint32(1)

	// SOH is the ASCII 0x01 field delimiter used throughout the wire
	// format. Not printable; tests render it as a literal byte.
	SOH = byte(0x01)
	Eq  = byte('=')
)

// --- Order Types (Tag 40) ---
const (
	OrdTypeMarket    = "1"
	OrdTypeLimit     = "2"
	OrdTypeStop      = "3"
	OrdTypeStopLimit = "4"
)

// --- Side (Tag 54) ---
const (
	SideBuy  = "1"
	SideSell = "2"
)

// --- Time In Force (Tag 59) ---
const (
	TimeInForceDay = "0"
	TimeInForceGTC = "1"
	TimeInForceIOC = "3"
	TimeInForceFOK = "4"
	TimeInForceGTD = "6"
)

// --- Order Status (Tag 39) ---
const (
	OrdStatusNew             = "0"
	OrdStatusPartiallyFilled = "1"
	OrdStatusFilled          = "2"
	OrdStatusDoneForDay      = "3"
	OrdStatusCanceled        = "4"
	OrdStatusReplaced        = "5"
	OrdStatusPendingCancel   = "6"
	OrdStatusStopped         = "7"
	OrdStatusRejected        = "8"
	OrdStatusSuspended       = "9"
	OrdStatusPendingNew      = "A"
	OrdStatusCalculated      = "B"
	OrdStatusExpired         = "C"
)

// --- Execution Type (Tag 150) ---
const (
	ExecTypeNew         = "0"
	ExecTypePartialFill = "1"
	ExecTypeFilled      = "2"
	ExecTypeDone        = "3"
	ExecTypeCanceled    = "4"
	ExecTypeRejected    = "8"
	ExecTypePendingNew  = "A"
	ExecTypeExpired     = "C"
)

// --- GapFillFlag (Tag 123) ---
const (
	GapFillFlagYes = "Y"
	GapFillFlagNo  = "N"
)

// --- PossDupFlag / PossResend (Tags 43 / 97) ---
const (
	PossDupFlagYes = "Y"
	PossDupFlagNo  = "N"
)

// --- ResetSeqNumFlag (Tag 141) ---
const (
	ResetSeqNumFlagYes = "Y"
)

// --- Session Reject Reason (Tag 373) ---
const (
	SessionRejectReasonInvalidTag          = "0"
	SessionRejectReasonRequiredTagMissing  = "1"
	SessionRejectReasonTagNotDefined       = "2"
	SessionRejectReasonUndefinedTag        = "3"
	SessionRejectReasonTagWithoutValue     = "4"
	SessionRejectReasonValueOutOfRange     = "5"
	SessionRejectReasonIncorrectDataFormat = "6"
	SessionRejectReasonCompIDProblem       = "9"
	SessionRejectReasonSendingTimeAccuracy = "10"
	SessionRejectReasonInvalidMsgType      = "11"
)

// --- Standard FIX Tags used by the session engine ---
const (
	TagAccount             = uint16(1)
	TagAvgPx               = uint16(6)
	TagBeginSeqNo          = uint16(7)
	TagBeginString         = uint16(8)
	TagBodyLength          = uint16(9)
	TagCheckSum            = uint16(10)
	TagClOrdID             = uint16(11)
	TagCumQty              = uint16(14)
	TagEndSeqNo            = uint16(16)
	TagExecID              = uint16(17)
	TagEncryptMethod       = uint16(98)
	TagExecType            = uint16(150)
	TagGapFillFlag         = uint16(123)
	TagHeartBtInt          = uint16(108)
	TagLastPx              = uint16(31)
	TagLastShares          = uint16(32)
	TagLeavesQty           = uint16(151)
	TagMsgSeqNum           = uint16(34)
	TagMsgType             = uint16(35)
	TagNewSeqNo            = uint16(36)
	TagOrderID             = uint16(37)
	TagOrderQty            = uint16(38)
	TagOrdStatus           = uint16(39)
	TagOrdType             = uint16(40)
	TagOrigSendingTime     = uint16(122)
	TagPassword            = uint16(554)
	TagPossDupFlag         = uint16(43)
	TagPossResend          = uint16(97)
	TagPrice               = uint16(44)
	TagRefMsgType          = uint16(372)
	TagRefSeqNum           = uint16(45)
	TagRefTagID            = uint16(371)
	TagResetSeqNumFlag     = uint16(141)
	TagSenderCompID        = uint16(49)
	TagSendingTime         = uint16(52)
	TagSessionRejectReason = uint16(373)
	TagSide                = uint16(54)
	TagStopPx              = uint16(99)
	TagSymbol              = uint16(55)
	TagTargetCompID        = uint16(56)
	TagTestReqID           = uint16(112)
	TagText                = uint16(58)
	TagTimeInForce         = uint16(59)
	TagTransactTime        = uint16(60)
	TagUsername            = uint16(553)
)
