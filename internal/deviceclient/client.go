// Copyright 2026 The fabgitops Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package deviceclient is a stateless, short-lived-connection client for the
// binary register-oriented TCP protocol the PLCs speak. It never pools
// connections: each call opens its own and closes it before returning, which
// keeps partial-failure semantics simple on devices that don't reliably keep
// sessions open.
package deviceclient

import (
	"fmt"
	"net"
	"time"

	"github.com/fabgitops/industrialplc-operator/internal/ierrors"
)

// Client is the narrow device-protocol interface the Reconciler depends on.
// Implementations must not reinterpret the caller's register index (no
// one-based offset correction); addressing is zero-based on the wire, as
// the caller provides it.
type Client interface {
	ReadRegister(addr string, port int32, reg uint16) (uint16, error)
	WriteRegister(addr string, port int32, reg, value uint16) error
	Reachable(addr string, port int32) bool
}

// TCPClient is the production Client implementation.
type TCPClient struct {
	// ConnectTimeout bounds the TCP handshake. Defaults to 3s.
	ConnectTimeout time.Duration
	// OperationTimeout bounds the request/response exchange once connected.
	// Defaults to 3s.
	OperationTimeout time.Duration
}

// NewTCPClient returns a TCPClient with the spec's default 3s+3s deadlines.
func NewTCPClient() *TCPClient {
	return &TCPClient{ConnectTimeout: 3 * time.Second, OperationTimeout: 3 * time.Second}
}

func (c *TCPClient) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 3 * time.Second
	}
	return c.ConnectTimeout
}

func (c *TCPClient) operationTimeout() time.Duration {
	if c.OperationTimeout <= 0 {
		return 3 * time.Second
	}
	return c.OperationTimeout
}

func (c *TCPClient) dial(addr string, port int32) (net.Conn, error) {
	target := net.JoinHostPort(addr, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", target, c.connectTimeout())
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, ierrors.New("dial", ierrors.Timeout, err)
		}
		return nil, ierrors.New("dial", ierrors.Unreachable, err)
	}
	return conn, nil
}

// Reachable attempts a TCP connect only, per the spec's contract for
// distinguishing network failure from protocol failure.
func (c *TCPClient) Reachable(addr string, port int32) bool {
	conn, err := c.dial(addr, port)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// ReadRegister issues a single read-holding-registers request of count 1 at
// reg and returns the 16-bit value.
func (c *TCPClient) ReadRegister(addr string, port int32, reg uint16) (uint16, error) {
	conn, err := c.dial(addr, port)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.operationTimeout())
	if err := conn.SetDeadline(deadline); err != nil {
		return 0, ierrors.New("read", ierrors.ProtocolError, err)
	}

	const txn = 1
	if _, err := conn.Write(encodeReadRequest(txn, reg)); err != nil {
		return 0, classifyIOError("read", err)
	}

	pdu, err := readFrame(conn, txn)
	if err != nil {
		return 0, err
	}
	if isException(pdu) {
		return 0, ierrors.New("read", ierrors.ProtocolError, fmt.Errorf("device exception response"))
	}
	value, ok := decodeReadResponse(pdu)
	if !ok {
		return 0, ierrors.New("read", ierrors.ProtocolError, fmt.Errorf("malformed read response"))
	}
	return value, nil
}

// WriteRegister issues a write-single-register request and confirms the
// device's echo of the register index and value.
func (c *TCPClient) WriteRegister(addr string, port int32, reg, value uint16) error {
	conn, err := c.dial(addr, port)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.operationTimeout())
	if err := conn.SetDeadline(deadline); err != nil {
		return ierrors.New("write", ierrors.ProtocolError, err)
	}

	const txn = 1
	if _, err := conn.Write(encodeWriteRequest(txn, reg, value)); err != nil {
		return classifyIOError("write", err)
	}

	pdu, err := readFrame(conn, txn)
	if err != nil {
		return err
	}
	if isException(pdu) {
		return ierrors.New("write", ierrors.ProtocolError, fmt.Errorf("device exception response"))
	}
	if !decodeWriteResponse(pdu, reg, value) {
		return ierrors.New("write", ierrors.ProtocolError, fmt.Errorf("echo mismatch"))
	}
	return nil
}

// readFrame reads one framed PDU off conn, validating the envelope against
// the expected transaction id.
func readFrame(conn net.Conn, wantTxn uint16) ([]byte, error) {
	hdr := make([]byte, headerLen)
	if _, err := readFull(conn, hdr); err != nil {
		return nil, classifyIOError("read-header", err)
	}
	pduLen, ok := decodeHeader(hdr, wantTxn)
	if !ok {
		return nil, ierrors.New("read-header", ierrors.ProtocolError, fmt.Errorf("malformed frame header"))
	}
	pdu := make([]byte, pduLen)
	if _, err := readFull(conn, pdu); err != nil {
		return nil, classifyIOError("read-body", err)
	}
	return pdu, nil
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	if n < len(buf) {
		return n, fmt.Errorf("short read: got %d of %d bytes", n, len(buf))
	}
	return n, nil
}

func classifyIOError(op string, err error) error {
	if err == nil {
		return nil
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return ierrors.New(op, ierrors.Timeout, err)
	}
	if err.Error() == "EOF" {
		return ierrors.New(op, ierrors.EmptyResponse, err)
	}
	return ierrors.New(op, ierrors.EmptyResponse, err)
}
