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
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

// pollDeadline bounds every Send/Receive syscall so a call that would
// otherwise block indefinitely instead returns promptly with
// ErrWouldBlock, the same non-blocking contract a POSIX O_NONBLOCK
// socket gives the C++ TcpTransport.
const pollDeadline = 5 * time.Millisecond

// TCPTransport is a net.Conn-backed Transport. Deadlines on every
// read/write emulate non-blocking sockets without requiring raw
// syscall access, since the net package does not expose O_NONBLOCK
// directly.
type TCPTransport struct {
	mu           sync.Mutex
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewTCPTransport returns an unconnected TCPTransport.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{readTimeout: pollDeadline, writeTimeout: pollDeadline}
}

func (t *TCPTransport) Connect(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
		_ = tcpConn.SetKeepAlive(true)
	}
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *TCPTransport) Send(data []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	timeout := t.writeTimeout
	t.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := conn.Write(data)
	if isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

func (t *TCPTransport) Receive(buf []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	timeout := t.readTimeout
	t.mu.Unlock()
	if conn == nil {
		return 0, net.ErrClosed
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	n, err := conn.Read(buf)
	if isTimeout(err) {
		return 0, ErrWouldBlock
	}
	return n, err
}

func (t *TCPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

func (t *TCPTransport) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// SetNoDelay toggles TCP_NODELAY on the underlying connection. Returns
// false if not yet connected or the connection isn't a *net.TCPConn
// (e.g. a test double or a non-TCP net.Conn).
func (t *TCPTransport) SetNoDelay(enabled bool) bool {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return false
	}
	return tcpConn.SetNoDelay(enabled) == nil
}

// SetKeepAlive toggles SO_KEEPALIVE on the underlying connection.
// Returns false if not yet connected or not a *net.TCPConn.
func (t *TCPTransport) SetKeepAlive(enabled bool) bool {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return false
	}
	return tcpConn.SetKeepAlive(enabled) == nil
}

// SetReadTimeout sets how long Receive waits for data before returning
// ErrWouldBlock. Returns false for a negative ms.
func (t *TCPTransport) SetReadTimeout(ms int) bool {
	if ms < 0 {
		return false
	}
	t.mu.Lock()
	t.readTimeout = time.Duration(ms) * time.Millisecond
	t.mu.Unlock()
	return true
}

// SetWriteTimeout sets how long Send waits for a write to complete
// before returning ErrWouldBlock. Returns false for a negative ms.
func (t *TCPTransport) SetWriteTimeout(ms int) bool {
	if ms < 0 {
		return false
	}
	t.mu.Lock()
	t.writeTimeout = time.Duration(ms) * time.Millisecond
	t.mu.Unlock()
	return true
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

var _ Transport = (*TCPTransport)(nil)
