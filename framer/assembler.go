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

package framer

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/SilverstreamsAI/NexusFix/constants"
)

// ErrMalformedHeader is returned when the buffered bytes do not start
// with a parseable 8=.../9=N header once enough bytes are present to
// tell.
var ErrMalformedHeader = errors.New("framer: malformed message header")

// ErrChecksumMismatch is returned when the bytes immediately following
// the body declared by BodyLength are not a well-formed 10=NNN field.
var ErrChecksumMismatch = errors.New("framer: checksum field malformed or missing")

const maxPending = 64 * 1024

// Assembler turns a raw inbound byte stream, delivered in arbitrarily
// sized chunks by the transport, back into complete FIX messages. A
// single transport.Receive call has no relationship to a message
// boundary - it can return the tail of one message, several coalesced
// messages, or nothing usable at all - so bytes accumulate in an
// internal buffer across calls to Feed until a full 8=.../9=N/.../10=NNN
// frame can be extracted.
type Assembler struct {
	buf []byte
}

// NewAssembler returns an Assembler with an empty buffer.
func NewAssembler() *Assembler {
	return &Assembler{buf: make([]byte, 0, 4096)}
}

// Reset discards any buffered partial message. Callers reset the
// assembler when a connection drops and is replaced, since bytes
// buffered against the old socket have no relationship to the new one.
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
}

// Pending reports how many bytes are currently buffered waiting for
// the rest of a message to arrive.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

// Feed appends chunk to the internal buffer and extracts every
// complete message now available. It returns the raw bytes of each
// message, SOH-terminated checksum field included, in arrival order.
// Any leftover partial message stays buffered for the next call.
func (a *Assembler) Feed(chunk []byte) ([][]byte, error) {
	a.buf = append(a.buf, chunk...)

	var out [][]byte
	for {
		frame, consumed, ok, err := extractFrame(a.buf)
		if err != nil {
			a.buf = a.buf[:0]
			return out, err
		}
		if !ok {
			break
		}
		msg := make([]byte, len(frame))
		copy(msg, frame)
		out = append(out, msg)
		a.buf = a.buf[consumed:]
	}

	if len(a.buf) > maxPending {
		a.buf = a.buf[:0]
		return out, ErrMalformedHeader
	}
	return out, nil
}

// extractFrame looks for one complete 8=FIX.4.4^A9=<N>^A<body>10=NNN^A
// message at the front of buf. ok is false, with no error, when buf
// does not yet hold enough bytes to tell - the caller should wait for
// more data. err is non-nil when buf has enough bytes to know the
// stream is desynchronized.
func extractFrame(buf []byte) (frame []byte, consumed int, ok bool, err error) {
	beginTag := []byte("8=")
	if !bytes.HasPrefix(buf, beginTag) {
		if len(buf) < len(beginTag) {
			return nil, 0, false, nil
		}
		return nil, 0, false, ErrMalformedHeader
	}

	firstSOH := bytes.IndexByte(buf, constants.SOH)
	if firstSOH < 0 {
		return nil, 0, false, nil
	}

	bodyLenTag := []byte("9=")
	rest := buf[firstSOH+1:]
	if !bytes.HasPrefix(rest, bodyLenTag) {
		return nil, 0, false, ErrMalformedHeader
	}

	secondSOH := bytes.IndexByte(rest, constants.SOH)
	if secondSOH < 0 {
		return nil, 0, false, nil
	}

	bodyLenStr := string(rest[len(bodyLenTag):secondSOH])
	bodyLen, convErr := strconv.Atoi(bodyLenStr)
	if convErr != nil || bodyLen < 0 {
		return nil, 0, false, ErrMalformedHeader
	}

	headerLen := firstSOH + 1 + secondSOH + 1
	bodyStart := headerLen
	bodyEnd := bodyStart + bodyLen
	if len(buf) < bodyEnd {
		return nil, 0, false, nil
	}

	checksumTag := []byte("10=")
	if !bytes.HasPrefix(buf[bodyEnd:], checksumTag) {
		return nil, 0, false, ErrChecksumMismatch
	}
	checksumField := buf[bodyEnd:]
	checksumSOH := bytes.IndexByte(checksumField, constants.SOH)
	if checksumSOH < 0 {
		return nil, 0, false, nil
	}
	// "10=" + 3 digits + SOH is the fixed width framer.Build always emits.
	if checksumSOH != len(checksumTag)+3 {
		return nil, 0, false, ErrChecksumMismatch
	}

	total := bodyEnd + checksumSOH + 1
	return buf[:total], total, true, nil
}
