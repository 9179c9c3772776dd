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

package transport

import (
	"context"
	"sync"
	"testing"
)

// fakeTransport reports ErrWouldBlock a fixed number of times before
// succeeding, to exercise AsyncTransport's retry loop without a real
// socket.
type fakeTransport struct {
	mu             sync.Mutex
	connectBlocks  int
	sendBlocks     int
	receiveBlocks  int
	connected      bool
	receiveData    []byte
}

func (f *fakeTransport) Connect(addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectBlocks > 0 {
		f.connectBlocks--
		return ErrWouldBlock
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) Send(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendBlocks > 0 {
		f.sendBlocks--
		return 0, ErrWouldBlock
	}
	return len(data), nil
}

func (f *fakeTransport) Receive(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receiveBlocks > 0 {
		f.receiveBlocks--
		return 0, ErrWouldBlock
	}
	n := copy(buf, f.receiveData)
	return n, nil
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeTransport) SetNoDelay(enabled bool) bool { return true }

func (f *fakeTransport) SetKeepAlive(enabled bool) bool { return true }

func (f *fakeTransport) SetReadTimeout(ms int) bool { return ms >= 0 }

func (f *fakeTransport) SetWriteTimeout(ms int) bool { return ms >= 0 }

func TestAsyncTransport_ConnectAsyncRetriesUntilSuccess(t *testing.T) {
	ft := &fakeTransport{connectBlocks: 5}
	async := NewAsyncTransport(ft)

	if err := async.ConnectAsync(context.Background(), "example:1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !async.IsConnected() {
		t.Fatal("expected transport to be connected after retries")
	}
}

func TestAsyncTransport_SendAsyncRetriesUntilSuccess(t *testing.T) {
	ft := &fakeTransport{sendBlocks: 3}
	async := NewAsyncTransport(ft)

	n, err := async.SendAsync(context.Background(), []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 bytes sent, got %d", n)
	}
}

func TestAsyncTransport_ReceiveAsyncRetriesUntilDataAvailable(t *testing.T) {
	ft := &fakeTransport{receiveBlocks: 4, receiveData: []byte("data")}
	async := NewAsyncTransport(ft)

	buf := make([]byte, 4)
	n, err := async.ReceiveAsync(context.Background(), buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(buf[:n]) != "data" {
		t.Fatalf("expected 'data', got %q", buf[:n])
	}
}

func TestAsyncTransport_ConnectAsyncRespectsContextCancellation(t *testing.T) {
	ft := &fakeTransport{connectBlocks: 1000000}
	async := NewAsyncTransport(ft)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := async.ConnectAsync(ctx, "example:1"); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
