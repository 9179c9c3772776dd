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
	"errors"

	"github.com/SilverstreamsAI/NexusFix/coroutine"
)

// AsyncTransport wraps a Transport with cooperative retry-on-WouldBlock
// loops, the direct port of async_transport.hpp's connect_async /
// send_async / receive_async: call the blocking-capable op, and if it
// reports ErrWouldBlock, yield and retry instead of giving up.
type AsyncTransport struct {
	transport Transport
}

// NewAsyncTransport wraps transport for cooperative async use.
func NewAsyncTransport(t Transport) *AsyncTransport {
	return &AsyncTransport{transport: t}
}

// ConnectAsync retries Connect until it succeeds, fails with a
// non-WouldBlock error, or ctx is done.
func (a *AsyncTransport) ConnectAsync(ctx context.Context, addr string) error {
	for {
		err := a.transport.Connect(addr)
		if err == nil || !errors.Is(err, ErrWouldBlock) {
			return err
		}
		coroutine.Yield()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// SendAsync retries Send until all of data has not necessarily been
// sent in one call, but the call itself stops blocking.
func (a *AsyncTransport) SendAsync(ctx context.Context, data []byte) (int, error) {
	for {
		n, err := a.transport.Send(data)
		if err == nil || !errors.Is(err, ErrWouldBlock) {
			return n, err
		}
		coroutine.Yield()
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}
}

// ReceiveAsync retries Receive until data is available, a non-WouldBlock
// error occurs, or ctx is done.
func (a *AsyncTransport) ReceiveAsync(ctx context.Context, buf []byte) (int, error) {
	for {
		n, err := a.transport.Receive(buf)
		if err == nil || !errors.Is(err, ErrWouldBlock) {
			return n, err
		}
		coroutine.Yield()
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}
}

// IsConnected reports whether the underlying transport is connected.
func (a *AsyncTransport) IsConnected() bool { return a.transport.IsConnected() }

// Disconnect closes the underlying transport.
func (a *AsyncTransport) Disconnect() error { return a.transport.Disconnect() }

// Underlying returns the wrapped Transport.
func (a *AsyncTransport) Underlying() Transport { return a.transport }
