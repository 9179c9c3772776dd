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
	"sync"
)

// fakeTransport is an in-process duplex Transport double: everything an
// Engine sends lands on outbound, and the test drives a simulated peer
// by pushing frames onto inbound for the Engine to receive.
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	outbound  [][]byte
	inbound   [][]byte

	onSend func(frame []byte) // optional hook, called outside the lock
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

func (f *fakeTransport) Connect(addr string) error {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Send(data []byte) (int, error) {
	frame := append([]byte(nil), data...)

	f.mu.Lock()
	f.outbound = append(f.outbound, frame)
	f.mu.Unlock()

	if f.onSend != nil {
		f.onSend(frame)
	}
	return len(data), nil
}

func (f *fakeTransport) Receive(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.inbound) == 0 {
		return 0, nil
	}

	frame := f.inbound[0]
	f.inbound = f.inbound[1:]
	n := copy(buf, frame)
	return n, nil
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) SetNoDelay(enabled bool) bool { return true }

func (f *fakeTransport) SetKeepAlive(enabled bool) bool { return true }

func (f *fakeTransport) SetReadTimeout(ms int) bool { return ms >= 0 }

func (f *fakeTransport) SetWriteTimeout(ms int) bool { return ms >= 0 }

// pushInbound enqueues a frame for the Engine's next Receive calls to
// return, simulating a message arriving from the peer.
func (f *fakeTransport) pushInbound(frame []byte) {
	f.mu.Lock()
	f.inbound = append(f.inbound, frame)
	f.mu.Unlock()
}

// takeOutbound drains and returns every frame sent so far.
func (f *fakeTransport) takeOutbound() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.outbound
	f.outbound = nil
	return out
}

// takeOutboundPeek returns every frame sent so far without draining it,
// for a poll loop that only needs to know whether anything has been
// sent yet.
func (f *fakeTransport) takeOutboundPeek() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outbound
}
