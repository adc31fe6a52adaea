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

	"github.com/go-wiremysql/wiremysql/internal/atomicflag"
)

// Statement is a prepared statement handle returned by Connection.Prepare.
// Execute may be called any number of times until Close.
type Statement struct {
	conn       *Connection
	id         uint32
	numParams  uint16
	numColumns uint16
	paramTypes []FieldMetadata
	columns    []FieldMetadata

	closed atomicflag.Bool
}

// prepareStatement issues COM_STMT_PREPARE and reads its response: an OK
// header giving the statement id and parameter/column counts, followed by
// that many parameter and column definition packets.
func prepareStatement(ctx context.Context, conn *Connection, sql string) (*Statement, error) {
	if err := sendCommand(ctx, conn.ch, comStmtPrepare, []byte(sql)); err != nil {
		return nil, err
	}

	data, err := conn.ch.readPacket(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 && data[0] == iERR {
		return nil, parseErrPacket(data)
	}
	if len(data) < 12 || data[0] != iOK {
		return nil, newProtocolError("prepare: bad header", ErrMalformedPacket)
	}

	stmt := &Statement{conn: conn}
	stmt.id = uint32(getFixedUint(data[1:5], 4))
	stmt.numColumns = getUint16(data[5:7])
	stmt.numParams = getUint16(data[7:9])
	// data[9] is a filler byte, data[10:12] is the warning count.

	if stmt.numParams > 0 {
		stmt.paramTypes = make([]FieldMetadata, 0, stmt.numParams)
		for i := uint16(0); i < stmt.numParams; i++ {
			colData, err := conn.ch.readPacket(ctx)
			if err != nil {
				return nil, err
			}
			fm, err := readColumnDefinition(colData)
			if err != nil {
				return nil, err
			}
			stmt.paramTypes = append(stmt.paramTypes, fm)
		}
		if !conn.session.deprecateEOF() {
			if _, err := conn.ch.readPacket(ctx); err != nil {
				return nil, err
			}
		}
	}

	if stmt.numColumns > 0 {
		stmt.columns = make([]FieldMetadata, 0, stmt.numColumns)
		for i := uint16(0); i < stmt.numColumns; i++ {
			colData, err := conn.ch.readPacket(ctx)
			if err != nil {
				return nil, err
			}
			fm, err := readColumnDefinition(colData)
			if err != nil {
				return nil, err
			}
			stmt.columns = append(stmt.columns, fm)
		}
		if !conn.session.deprecateEOF() {
			if _, err := conn.ch.readPacket(ctx); err != nil {
				return nil, err
			}
		}
	}

	return stmt, nil
}

// NumParams reports the number of `?` placeholders the statement expects.
func (s *Statement) NumParams() int { return int(s.numParams) }

// Columns reports the result set shape the statement will produce, if any
// (empty for statements with no result set, such as INSERT).
func (s *Statement) Columns() []FieldMetadata { return s.columns }

// Execute issues COM_STMT_EXECUTE with args bound positionally to the
// statement's placeholders, returning a binary-encoded ResultSet.
func (s *Statement) Execute(ctx context.Context, args ...Value) (*ResultSet, error) {
	if s.closed.IsSet() || s.conn.closed.IsSet() {
		return nil, ErrStatementClosed
	}
	if len(args) != int(s.numParams) {
		return nil, ErrWrongNumParams
	}
	if err := s.conn.beginCommand(); err != nil {
		return nil, err
	}

	payload, err := s.buildExecutePayload(args)
	if err != nil {
		return nil, err
	}

	finish := traceCommand(ctx, s.conn.tracerFor(), "execute", "")
	if err := sendCommand(ctx, s.conn.ch, comStmtExecute, payload); err != nil {
		finish(err)
		return nil, err
	}

	header, err := readResultSetHeader(ctx, s.conn.ch, s.conn.session.deprecateEOF())
	finish(err)
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{conn: s.conn, ch: s.conn.ch, columns: header.columns, binary: true}
	if !header.isResultSet {
		rs.final = header.ok
		rs.state.Store(int32(rsComplete))
		return rs, nil
	}

	s.conn.setActive(rs)
	return rs, nil
}

// cursorTypeNoCursor is the only cursor-type value this client sends; server
// side cursors are out of scope.
const cursorTypeNoCursor = 0x00

// buildExecutePayload encodes the COM_STMT_EXECUTE body: statement-id,
// cursor flags, iteration count, a null-bitmap over the parameters, a
// new-params-bound-flag, per-parameter (type, unsigned) pairs, and the
// parameter values themselves in binary encoding.
func (s *Statement) buildExecutePayload(args []Value) ([]byte, error) {
	buf := make([]byte, 0, 16+len(args)*8)

	idBuf := make([]byte, 4)
	putFixedUint(idBuf, uint64(s.id), 4)
	buf = append(buf, idBuf...)
	buf = append(buf, cursorTypeNoCursor)
	buf = append(buf, 1, 0, 0, 0) // iteration-count, always 1

	if len(args) == 0 {
		return buf, nil
	}

	bitmapLen := (len(args) + 7) / 8
	nullBitmap := make([]byte, bitmapLen)

	types := make([][2]byte, len(args))
	values := make([][]byte, len(args))
	for i, v := range args {
		typ, unsigned, encoded, err := encodeBinaryParam(v)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			nullBitmap[i/8] |= 1 << uint(i%8)
		}
		types[i][0] = byte(typ)
		if unsigned {
			types[i][1] = 0x80
		}
		values[i] = encoded
	}

	buf = append(buf, nullBitmap...)
	buf = append(buf, 1) // new-params-bound-flag

	for _, t := range types {
		buf = append(buf, t[0], t[1])
	}
	for i, v := range args {
		if v.IsNull() {
			continue
		}
		buf = append(buf, values[i]...)
	}

	return buf, nil
}

// Close issues COM_STMT_CLOSE, which the server never acknowledges, and
// marks the statement unusable. Close is idempotent: calling it again is a
// no-op that returns nil, while calling Execute afterward returns
// ErrStatementClosed.
func (s *Statement) Close(ctx context.Context) error {
	if s.closed.TrySet(true) == false {
		return nil
	}
	idBuf := make([]byte, 4)
	putFixedUint(idBuf, uint64(s.id), 4)
	return sendCommand(ctx, s.conn.ch, comStmtClose, idBuf)
}
