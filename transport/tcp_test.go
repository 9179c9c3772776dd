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
	"io"
	"net"
	"testing"
	"time"
)

func startEchoServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				_, _ = conn.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func TestTCPTransport_ConnectSendReceive(t *testing.T) {
	addr := startEchoServer(t)
	tr := NewTCPTransport()

	if err := tr.Connect(addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Disconnect()

	if !tr.IsConnected() {
		t.Fatal("expected IsConnected to be true after Connect")
	}

	msg := []byte("8=FIX.4.4|35=0|")
	if _, err := sendAll(tr, msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, len(msg))
	if err := receiveAll(tr, buf); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(buf) != string(msg) {
		t.Fatalf("expected echo of %q, got %q", msg, buf)
	}
}

func TestTCPTransport_DisconnectClosesConnection(t *testing.T) {
	addr := startEchoServer(t)
	tr := NewTCPTransport()
	if err := tr.Connect(addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := tr.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if tr.IsConnected() {
		t.Fatal("expected IsConnected false after Disconnect")
	}

	if _, err := tr.Send([]byte("x")); err == nil {
		t.Fatal("expected error sending on disconnected transport")
	}
}

func TestTCPTransport_ReceiveWithoutDataReturnsWouldBlock(t *testing.T) {
	addr := startEchoServer(t)
	tr := NewTCPTransport()
	if err := tr.Connect(addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Disconnect()

	buf := make([]byte, 16)
	_, err := tr.Receive(buf)
	if err != ErrWouldBlock {
		t.Fatalf("expected ErrWouldBlock when no data is available, got %v", err)
	}
}

func TestTCPTransport_SetNoDelayAndKeepAliveFailBeforeConnect(t *testing.T) {
	tr := NewTCPTransport()
	if tr.SetNoDelay(true) {
		t.Fatal("expected SetNoDelay to fail before Connect")
	}
	if tr.SetKeepAlive(true) {
		t.Fatal("expected SetKeepAlive to fail before Connect")
	}
}

func TestTCPTransport_SetNoDelayAndKeepAliveSucceedAfterConnect(t *testing.T) {
	addr := startEchoServer(t)
	tr := NewTCPTransport()
	if err := tr.Connect(addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Disconnect()

	if !tr.SetNoDelay(true) {
		t.Fatal("expected SetNoDelay to succeed once connected")
	}
	if !tr.SetKeepAlive(true) {
		t.Fatal("expected SetKeepAlive to succeed once connected")
	}
}

func TestTCPTransport_SetReadTimeoutRejectsNegative(t *testing.T) {
	tr := NewTCPTransport()
	if tr.SetReadTimeout(-1) {
		t.Fatal("expected SetReadTimeout to reject a negative value")
	}
	if !tr.SetReadTimeout(0) {
		t.Fatal("expected SetReadTimeout to accept zero")
	}
}

func TestTCPTransport_SetWriteTimeoutChangesBlockingBehavior(t *testing.T) {
	addr := startEchoServer(t)
	tr := NewTCPTransport()
	if err := tr.Connect(addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer tr.Disconnect()

	if !tr.SetWriteTimeout(1000) {
		t.Fatal("expected SetWriteTimeout to succeed")
	}

	n, err := tr.Send([]byte("8=FIX.4.4|35=0|"))
	if err != nil {
		t.Fatalf("unexpected error with a generous write timeout: %v", err)
	}
	if n == 0 {
		t.Fatal("expected some bytes written")
	}
}

func sendAll(tr *TCPTransport, data []byte) (int, error) {
	total := 0
	deadline := time.Now().Add(2 * time.Second)
	for total < len(data) {
		n, err := tr.Send(data[total:])
		total += n
		if err != nil && err != ErrWouldBlock {
			return total, err
		}
		if time.Now().After(deadline) {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

func receiveAll(tr *TCPTransport, buf []byte) error {
	total := 0
	deadline := time.Now().Add(2 * time.Second)
	for total < len(buf) {
		n, err := tr.Receive(buf[total:])
		total += n
		if err != nil && err != ErrWouldBlock {
			return err
		}
		if time.Now().After(deadline) {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}
