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

// Package framer assembles outbound FIX messages - body fields first,
// then BeginString/BodyLength header framing and the trailing checksum -
// and, via Assembler, disassembles the inbound byte stream back into
// complete messages. A transport.Receive call has no relationship to a
// FIX message boundary, so the inbound side has to buffer across reads
// the same way the outbound side buffers across SetString calls.
package framer

import (
	"fmt"
	"strconv"

	"github.com/SilverstreamsAI/NexusFix/constants"
)

// Message is a mutable field list being assembled for send. Fields are
// appended in the order callers set them, mirroring how builder.go sets
// header fields first and body fields after - the teacher's
// buildHeader-then-body convention in prime-fix-md-go/builder/messages.go.
type Message struct {
	fields []field
}

type field struct {
	tag   uint16
	value string
}

// New returns an empty Message ready to have fields appended.
func New() *Message {
	return &Message{fields: make([]field, 0, 16)}
}

// SetString appends a tag=value field. Later calls with the same tag
// append another field rather than overwriting - callers that need
// replace semantics must not call SetString twice for one tag.
func (m *Message) SetString(tag uint16, value string) *Message {
	m.fields = append(m.fields, field{tag: tag, value: value})
	return m
}

// SetInt appends a tag=value field from an integer.
func (m *Message) SetInt(tag uint16, value int64) *Message {
	return m.SetString(tag, strconv.FormatInt(value, 10))
}

// SetUint32 appends a tag=value field from a uint32, for sequence
// number fields.
func (m *Message) SetUint32(tag uint16, value uint32) *Message {
	return m.SetString(tag, strconv.FormatUint(uint64(value), 10))
}

// Build renders the message to wire bytes: BeginString, computed
// BodyLength, the caller's body fields in the order they were set, then
// the checksum. senderCompID/targetCompID/sendingTime/msgType/seqNum
// are supplied separately because every message carries them and the
// caller should not have to remember to call SetString for each by tag
// number every time.
func Build(msgType string, senderCompID, targetCompID string, seqNum uint32, sendingTime string, body *Message) []byte {
	var bodyBuf []byte
	bodyBuf = appendField(bodyBuf, constants.TagMsgType, msgType)
	bodyBuf = appendField(bodyBuf, constants.TagSenderCompID, senderCompID)
	bodyBuf = appendField(bodyBuf, constants.TagTargetCompID, targetCompID)
	bodyBuf = appendFieldUint(bodyBuf, constants.TagMsgSeqNum, seqNum)
	bodyBuf = appendField(bodyBuf, constants.TagSendingTime, sendingTime)
	for _, f := range body.fields {
		bodyBuf = appendField(bodyBuf, f.tag, f.value)
	}

	var out []byte
	out = appendField(out, constants.TagBeginString, constants.FixBeginStringFix44)
	out = appendFieldInt(out, constants.TagBodyLength, len(bodyBuf))
	out = append(out, bodyBuf...)

	var sum byte
	for _, b := range out {
		sum += b
	}
	out = appendField(out, constants.TagCheckSum, fmt.Sprintf("%03d", sum))
	return out
}

func appendField(buf []byte, tag uint16, value string) []byte {
	buf = strconv.AppendUint(buf, uint64(tag), 10)
	buf = append(buf, constants.Eq)
	buf = append(buf, value...)
	buf = append(buf, constants.SOH)
	return buf
}

func appendFieldInt(buf []byte, tag uint16, value int) []byte {
	buf = strconv.AppendUint(buf, uint64(tag), 10)
	buf = append(buf, constants.Eq)
	buf = strconv.AppendInt(buf, int64(value), 10)
	buf = append(buf, constants.SOH)
	return buf
}

func appendFieldUint(buf []byte, tag uint16, value uint32) []byte {
	buf = strconv.AppendUint(buf, uint64(tag), 10)
	buf = append(buf, constants.Eq)
	buf = strconv.AppendUint(buf, uint64(value), 10)
	buf = append(buf, constants.SOH)
	return buf
}
