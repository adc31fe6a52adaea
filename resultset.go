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
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// resultSetState is the two-state machine a ResultSet moves through:
// Streaming while rows remain to be read off the wire, Complete once the
// terminal OK/EOF has been consumed and the connection is free for the
// next command.
type resultSetState int32

const (
	rsStreaming resultSetState = iota
	rsComplete
)

// ResultSet represents one query's rows, text- or binary-encoded depending
// on whether it came from COM_QUERY or COM_STMT_EXECUTE. Only one ResultSet
// per Connection may be Streaming at a time; Query and Statement.Execute
// refuse to start a new one until the previous has reached Complete.
type ResultSet struct {
	conn    *Connection
	ch      *packetChannel
	columns []FieldMetadata
	binary  bool

	state atomic.Int32
	final okPacket
}

// BorrowedRow is a Row that aliases the channel's read buffer. It remains
// valid only until the next read on the same connection (the next FetchOne,
// FetchMany, or any other command); calling Row after that returns
// ErrStaleRowAccess. Use Clone (or FetchMany/FetchAll) to obtain a Row that
// outlives the next fetch.
type BorrowedRow struct {
	row        Row
	rs         *ResultSet
	generation uint64
}

// Row returns the underlying Row if it has not been invalidated by a later
// read, or ErrStaleRowAccess otherwise.
func (b *BorrowedRow) Row() (Row, error) {
	if b.rs.ch.generation() != b.generation {
		return nil, ErrStaleRowAccess
	}
	return b.row, nil
}

// Clone returns a deep, owning copy of the row. Integer, float, temporal and
// decimal values never reference the read buffer, but String and Blob bytes
// alias it until copied here, so Clone copies them intact only when called
// before the next read on the same connection.
func (b *BorrowedRow) Clone() Row {
	return b.row.clone()
}

// Columns reports the result set's column metadata, fixed for its lifetime.
func (rs *ResultSet) Columns() []FieldMetadata {
	return rs.columns
}

// Streaming reports whether rows remain to be fetched.
func (rs *ResultSet) Streaming() bool {
	return resultSetState(rs.state.Load()) == rsStreaming
}

// AffectedRows and LastInsertID are only meaningful once Streaming is false;
// before that they read as zero.
func (rs *ResultSet) AffectedRows() uint64 { return rs.final.affectedRows }
func (rs *ResultSet) LastInsertID() uint64 { return rs.final.lastInsertID }
func (rs *ResultSet) Warnings() uint16     { return rs.final.warnings }

func (rs *ResultSet) markComplete(ok okPacket) {
	rs.final = ok
	rs.state.Store(int32(rsComplete))
	rs.conn.releaseResultSet(rs)
}

// FetchOne reads the next row. ok is false once the terminal packet has
// been consumed, at which point the ResultSet transitions to Complete and
// the connection becomes free for its next command.
func (rs *ResultSet) FetchOne(ctx context.Context) (*BorrowedRow, bool, error) {
	if !rs.Streaming() {
		return nil, false, nil
	}

	data, err := rs.ch.readPacket(ctx)
	if err != nil {
		return nil, false, err
	}

	if terminal, err := rs.consumeTerminator(data); terminal {
		return nil, false, err
	}

	row, err := rs.decodeRow(data)
	if err != nil {
		return nil, false, err
	}

	return &BorrowedRow{row: row, rs: rs, generation: rs.ch.generation()}, true, nil
}

// consumeTerminator checks whether data is the terminal packet of the row
// stream (an ERR, or the EOF/OK-as-EOF marker, selected per the connection's
// DEPRECATE_EOF capability), and if so parses it and transitions the result
// set to Complete. The packet-length heuristic (isEOFPacket) is what MySQL's
// own wire format relies on to tell an EOF-shaped header apart from a row
// whose first column happens to encode a large lenenc length with the same
// leading byte.
func (rs *ResultSet) consumeTerminator(data []byte) (terminal bool, err error) {
	if len(data) > 0 && data[0] == iERR {
		err := parseErrPacket(data)
		rs.markComplete(okPacket{})
		return true, err
	}
	if !isEOFPacket(data) {
		return false, nil
	}

	if rs.conn.session.deprecateEOF() {
		ok, err := parseOKPacket(data, false)
		if err != nil {
			return true, err
		}
		rs.markComplete(ok)
		return true, nil
	}

	eof, err := parseEOFPacket(data)
	if err != nil {
		return true, err
	}
	rs.markComplete(okPacket{statusFlags: eof.statusFlags, warnings: eof.warnings})
	return true, nil
}

func (rs *ResultSet) decodeRow(data []byte) (Row, error) {
	if rs.binary {
		return decodeBinaryRow(rs.columns, data)
	}

	row := make(Row, len(rs.columns))
	pos := 0
	for i := range rs.columns {
		v, n, err := decodeTextValue(&rs.columns[i], data[pos:])
		if err != nil {
			return nil, err
		}
		row[i] = v
		pos += n
	}
	return row, nil
}

// FetchMany reads up to n rows, returning owning (deep-copied) rows. It
// returns fewer than n rows, with a nil error, when the result set is
// exhausted first.
func (rs *ResultSet) FetchMany(ctx context.Context, n int) ([]Row, error) {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		br, ok, err := rs.FetchOne(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, br.Clone())
	}
	return rows, nil
}

// FetchAll drains the result set, returning owning rows.
func (rs *ResultSet) FetchAll(ctx context.Context) ([]Row, error) {
	var rows []Row
	for {
		br, ok, err := rs.FetchOne(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, br.Clone())
	}
}

// FetchAllParallel drains the result set like FetchAll, but farms the
// per-row value decoding out across workers goroutines while the rows
// themselves are still read serially off the single underlying connection
// (the wire is not parallelizable; the CPU-bound decode step is).
func (rs *ResultSet) FetchAllParallel(ctx context.Context, workers int) ([]Row, error) {
	if workers < 1 {
		workers = 1
	}

	var raw [][]byte
	for rs.Streaming() {
		data, err := rs.ch.readPacket(ctx)
		if err != nil {
			return nil, err
		}
		if terminal, err := rs.consumeTerminator(data); terminal {
			if err != nil {
				return nil, err
			}
			break
		}
		owned := make([]byte, len(data))
		copy(owned, data)
		raw = append(raw, owned)
	}

	rows := make([]Row, len(raw))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, packet := range raw {
		i, packet := i, packet
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			row, err := rs.decodeRow(packet)
			if err != nil {
				return err
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
