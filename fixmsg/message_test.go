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

package fixmsg

import (
	"errors"
	"strings"
	"testing"

	"github.com/SilverstreamsAI/NexusFix/constants"
)

// buildRaw assembles a valid wire message from a body string (everything
// after "8=FIX.4.4|9=<len>|" and before "10=<sum>|"), computing both the
// body length and checksum the same way a real counterparty would.
func buildRaw(t *testing.T, msgType string, fields string) []byte {
	t.Helper()
	body := "35=" + msgType + "\x01" + fields
	bodyWithLen := "9=" + itoa(len(body)) + "\x01" + body
	full := "8=FIX.4.4\x01" + bodyWithLen

	var sum byte
	for i := 0; i < len(full); i++ {
		sum += full[i]
	}
	full += "10=" + pad3(sum) + "\x01"
	return []byte(full)
}

func itoa(n int) string {
	return strings_Itoa(n)
}

// small local helpers to avoid importing strconv twice for readability
func strings_Itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

func pad3(sum byte) string {
	s := strings_Itoa(int(sum))
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

func TestParse_ValidLogon(t *testing.T) {
	raw := buildRaw(t, constants.MsgTypeLogon, "34=1\x0149=CLIENT\x0156=SERVER\x0152=20250101-00:00:00.000\x0198=0\x01108=30\x01")

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mt, ok := msg.MsgType()
	if !ok || mt != constants.MsgTypeLogon {
		t.Fatalf("expected msg type A, got %q ok=%v", mt, ok)
	}

	seq, ok := msg.MsgSeqNum()
	if !ok || seq != 1 {
		t.Fatalf("expected seqnum 1, got %d ok=%v", seq, ok)
	}

	sender, ok := msg.GetString(constants.TagSenderCompID)
	if !ok || sender != "CLIENT" {
		t.Fatalf("expected sender CLIENT, got %q", sender)
	}
}

func TestParse_ChecksumMismatch(t *testing.T) {
	raw := buildRaw(t, constants.MsgTypeHeartbeat, "34=1\x0149=CLIENT\x0156=SERVER\x0152=20250101-00:00:00.000\x01")
	// corrupt one byte in the body, after length/checksum were computed
	corrupted := []byte(strings.Replace(string(raw), "CLIENT", "CLIENX", 1))

	_, err := Parse(corrupted)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestParse_BodyLengthMismatch(t *testing.T) {
	raw := buildRaw(t, constants.MsgTypeHeartbeat, "34=1\x01")
	// splice in an extra field without updating body length or checksum
	tampered := strings.Replace(string(raw), "34=1\x01", "34=1\x01112=EXTRA\x01", 1)

	_, err := Parse([]byte(tampered))
	if err == nil {
		t.Fatal("expected an error for tampered body, got nil")
	}
}

func TestParse_Truncated(t *testing.T) {
	_, err := Parse([]byte("8=FIX.4.4"))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestParse_MalformedField(t *testing.T) {
	_, err := Parse([]byte("8FIX.4.4\x01"))
	if !errors.Is(err, ErrMalformedField) {
		t.Fatalf("expected ErrMalformedField, got %v", err)
	}
}

func TestParsedMessage_GetDecimal(t *testing.T) {
	raw := buildRaw(t, constants.MsgTypeNewOrderSingle, "34=1\x0149=CLIENT\x0156=SERVER\x0144=101.50\x0138=10\x01")
	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	price, ok := msg.GetDecimal(constants.TagPrice)
	if !ok {
		t.Fatal("expected price field present")
	}
	if price.String() != "101.5" {
		t.Fatalf("expected 101.5, got %s", price.String())
	}
}

func TestParsedMessage_PossDup(t *testing.T) {
	raw := buildRaw(t, constants.MsgTypeHeartbeat, "34=5\x0143=Y\x01")
	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !msg.PossDup() {
		t.Fatal("expected PossDup to be true")
	}
}

func TestParsedMessage_Clone(t *testing.T) {
	raw := buildRaw(t, constants.MsgTypeHeartbeat, "34=1\x01")
	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clone := msg.Clone()

	// mutate the original buffer; the clone must be unaffected
	for i := range raw {
		raw[i] = 'x'
	}

	mt, ok := clone.MsgType()
	if !ok || mt != constants.MsgTypeHeartbeat {
		t.Fatalf("clone was affected by mutation of original buffer: mt=%q ok=%v", mt, ok)
	}
}

func TestParse_TooManyFields(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxFields+10; i++ {
		b.WriteString("1=a\x01")
	}
	_, err := Parse([]byte(b.String()))
	if !errors.Is(err, ErrTooManyFields) {
		t.Fatalf("expected ErrTooManyFields, got %v", err)
	}
}
