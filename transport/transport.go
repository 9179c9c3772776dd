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

// Package transport provides the byte-level connection abstraction the
// session engine runs on, and an async wrapper that retries WouldBlock
// results cooperatively instead of blocking a goroutine on I/O. This is
// the Go shape of nexusfix's ITransport / AsyncTransport split.
package transport

import "errors"

// ErrWouldBlock is returned by a non-blocking Transport operation that
// could not complete without blocking. AsyncTransport retries on this
// error with a Yield between attempts.
var ErrWouldBlock = errors.New("transport: operation would block")

// Transport is the blocking-capability-agnostic connection contract.
// Implementations may be genuinely non-blocking (returning ErrWouldBlock)
// or simply block the calling goroutine; AsyncTransport works with
// either by retrying on ErrWouldBlock and passing through any other
// error immediately.
type Transport interface {
	// Connect establishes the connection to addr ("host:port").
	Connect(addr string) error

	// Send writes data to the connection, returning the number of
	// bytes written. A partial write is not an error.
	Send(data []byte) (int, error)

	// Receive reads available bytes into buf, returning the number
	// read. Zero bytes with a nil error means no data was currently
	// available (only returned by non-blocking implementations).
	Receive(buf []byte) (int, error)

	// IsConnected reports whether the connection is currently open.
	IsConnected() bool

	// Disconnect closes the connection. Safe to call multiple times.
	Disconnect() error

	// SetNoDelay toggles TCP_NODELAY, disabling Nagle's algorithm so
	// small FIX messages aren't held back waiting to coalesce. Returns
	// false if the underlying connection doesn't support the option or
	// isn't connected yet.
	SetNoDelay(enabled bool) bool

	// SetKeepAlive toggles SO_KEEPALIVE on the connection. Returns false
	// if the underlying connection doesn't support the option or isn't
	// connected yet.
	SetKeepAlive(enabled bool) bool

	// SetReadTimeout sets the deadline Receive waits for data before
	// returning ErrWouldBlock, in milliseconds. Returns false for a
	// negative value.
	SetReadTimeout(ms int) bool

	// SetWriteTimeout sets the deadline Send waits to complete a write
	// before returning ErrWouldBlock, in milliseconds. Returns false for
	// a negative value.
	SetWriteTimeout(ms int) bool
}
