// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"context"
	"net"
	"time"
)

// Transport is a full-duplex, stream-oriented (not datagram-framed) byte
// channel. The packet channel is built entirely against this interface so
// tests can substitute a scripted mock instead of a real socket.
type Transport interface {
	// Read behaves like io.Reader: it may return fewer bytes than len(p)
	// and must report EOF as a distinct error (io.EOF), never silently.
	Read(p []byte) (n int, err error)
	// Write behaves like io.Writer.
	Write(p []byte) (n int, err error)
	Close() error
}

// deadlineSetter is implemented by transports (like net.Conn) that support
// per-operation timeouts; used to translate a context.Context deadline into
// a transport-level deadline without baking net.Conn into the core.
type deadlineSetter interface {
	SetDeadline(t time.Time) error
}

// netTransport adapts a net.Conn to Transport, additionally honoring a
// context.Context deadline on each call.
type netTransport struct {
	conn net.Conn
}

// dialTransport opens a TCP or Unix-domain connection. network is "tcp" or
// "unix".
func dialTransport(ctx context.Context, network, address string, timeout time.Duration) (Transport, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, newTransportError("connect", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
	}
	return &netTransport{conn: conn}, nil
}

func (t *netTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *netTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *netTransport) Close() error                { return t.conn.Close() }

func (t *netTransport) SetDeadline(d time.Time) error { return t.conn.SetDeadline(d) }
