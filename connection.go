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
	"fmt"
	"sync"

	"github.com/go-wiremysql/wiremysql/internal/atomicflag"
)

// Connection is one negotiated client session: a handshaken packet channel
// plus the session state the handshake produced.
type Connection struct {
	cfg     *Config
	ch      *packetChannel
	session *session
	logger  Logger

	mu         sync.Mutex
	active     *ResultSet
	closed     atomicflag.Bool
	tracer     Tracer
	maxAllowed uint64
}

// Connect dials cfg.Net/cfg.Addr and performs the full handshake, returning
// a ready-to-use Connection.
func Connect(ctx context.Context, cfg *Config) (*Connection, error) {
	t, err := dialTransport(ctx, cfg.Net, cfg.Addr, cfg.Timeout)
	if err != nil {
		return nil, newTransportError("dial", err)
	}

	ch := newPacketChannel(t)
	sess, err := performHandshake(ctx, ch, cfg)
	if err != nil {
		_ = ch.close()
		return nil, err
	}

	return &Connection{
		cfg:     cfg,
		ch:      ch,
		session: sess,
		logger:  cfg.logger(),
		tracer:  noopTracer{},
	}, nil
}

// SetTracer installs t to observe every command this connection issues.
// A nil t restores the no-op tracer.
func (c *Connection) SetTracer(t Tracer) {
	if t == nil {
		t = noopTracer{}
	}
	c.mu.Lock()
	c.tracer = t
	c.mu.Unlock()
}

func (c *Connection) checkUsable() error {
	if c.closed.IsSet() {
		return ErrConnectionPoisoned
	}
	if err := c.ch.checkPoisoned(); err != nil {
		return err
	}
	return nil
}

// beginCommand enforces the single-active-result-set invariant before any
// new command packet is written.
func (c *Connection) beginCommand() error {
	if err := c.checkUsable(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && c.active.Streaming() {
		return ErrResultSetStreaming
	}
	return nil
}

func (c *Connection) setActive(rs *ResultSet) {
	c.mu.Lock()
	c.active = rs
	c.mu.Unlock()
}

// releaseResultSet is called by ResultSet once it reaches Complete.
func (c *Connection) releaseResultSet(rs *ResultSet) {
	c.mu.Lock()
	if c.active == rs {
		c.active = nil
	}
	c.mu.Unlock()
}

func (c *Connection) tracerFor() Tracer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracer
}

// Query issues sql as a COM_QUERY text command and returns its ResultSet.
// For statements with no rows (DML, DDL), the returned ResultSet is already
// Complete; AffectedRows/LastInsertID report its outcome.
func (c *Connection) Query(ctx context.Context, sql string) (*ResultSet, error) {
	if err := c.beginCommand(); err != nil {
		return nil, err
	}

	finish := traceCommand(ctx, c.tracerFor(), "query", sql)
	if err := sendCommand(ctx, c.ch, comQuery, []byte(sql)); err != nil {
		finish(err)
		return nil, err
	}

	header, err := readResultSetHeader(ctx, c.ch, c.session.deprecateEOF())
	finish(err)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{conn: c, ch: c.ch, columns: header.columns, binary: false}
	if !header.isResultSet {
		rs.final = header.ok
		rs.state.Store(int32(rsComplete))
		return rs, nil
	}

	c.setActive(rs)
	return rs, nil
}

// Prepare issues COM_STMT_PREPARE for sql and returns a reusable Statement.
func (c *Connection) Prepare(ctx context.Context, sql string) (*Statement, error) {
	if err := c.beginCommand(); err != nil {
		return nil, err
	}
	finish := traceCommand(ctx, c.tracerFor(), "prepare", sql)
	stmt, err := prepareStatement(ctx, c, sql)
	finish(err)
	return stmt, err
}

// Ping issues COM_PING, useful for liveness checks that do not rely on the
// transport-level dead-connection heuristic conncheck.go uses.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.beginCommand(); err != nil {
		return err
	}
	finish := traceCommand(ctx, c.tracerFor(), "ping", "")
	if err := sendCommand(ctx, c.ch, comPing, nil); err != nil {
		finish(err)
		return err
	}
	data, err := c.ch.readPacket(ctx)
	finish(err)
	if err != nil {
		return err
	}
	if len(data) > 0 && data[0] == iERR {
		return parseErrPacket(data)
	}
	_, err = parseOKPacket(data, false)
	return err
}

// Begin, Commit, and Rollback are transaction helpers implemented in terms
// of COM_QUERY, layering transactions over the text protocol.
func (c *Connection) Begin(ctx context.Context) error {
	return c.execStatement(ctx, "START TRANSACTION")
}

func (c *Connection) Commit(ctx context.Context) error {
	return c.execStatement(ctx, "COMMIT")
}

func (c *Connection) Rollback(ctx context.Context) error {
	return c.execStatement(ctx, "ROLLBACK")
}

func (c *Connection) execStatement(ctx context.Context, sql string) error {
	rs, err := c.Query(ctx, sql)
	if err != nil {
		return err
	}
	if rs.Streaming() {
		_, err = rs.FetchAll(ctx)
	}
	return err
}

// MaxAllowedPacket queries and caches @@max_allowed_packet, for sizing
// outgoing payloads relative to the server's configured ceiling.
func (c *Connection) MaxAllowedPacket(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	cached := c.maxAllowed
	c.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	rs, err := c.Query(ctx, "SELECT @@max_allowed_packet")
	if err != nil {
		return 0, err
	}
	rows, err := rs.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 || len(rows[0]) != 1 {
		return 0, newProtocolError("max_allowed_packet", fmt.Errorf("unexpected row shape"))
	}
	v, ok := rows[0][0].Int64()
	if !ok {
		return 0, newProtocolError("max_allowed_packet", fmt.Errorf("unexpected value kind"))
	}

	c.mu.Lock()
	c.maxAllowed = uint64(v)
	c.mu.Unlock()
	return uint64(v), nil
}

// Quit sends COM_QUIT and closes the underlying transport. The Connection
// must not be used afterward.
func (c *Connection) Quit(ctx context.Context) error {
	if c.closed.TrySet(true) == false {
		return nil
	}
	_ = sendCommand(ctx, c.ch, comQuit, nil)
	return c.ch.close()
}

// Close is an alias for Quit with a background context, for callers that
// manage connections via io.Closer-shaped pools.
func (c *Connection) Close() error {
	return c.Quit(context.Background())
}
