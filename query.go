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
)

// resultSetHeader is the outcome of dispatching on a command's first
// response packet: either a terminal OK (no rows), or a column-count
// header followed by column-definition packets.
type resultSetHeader struct {
	isResultSet bool
	ok          okPacket
	columns     []FieldMetadata
}

// sendCommand writes a COM_* command packet: the command byte followed by
// its payload, sequence reset to 0 as every new command does.
func sendCommand(ctx context.Context, ch *packetChannel, cmd commandType, payload []byte) error {
	ch.resetSequence()
	data := make([]byte, 0, 1+len(payload))
	data = append(data, byte(cmd))
	data = append(data, payload...)
	return ch.writePacket(ctx, data)
}

// readResultSetHeader reads and classifies the first packet of a command's
// response: OK, ERR, a LOCAL INFILE request (always rejected), or a
// column-count header.
func readResultSetHeader(ctx context.Context, ch *packetChannel, deprecateEOF bool) (resultSetHeader, error) {
	data, err := ch.readPacket(ctx)
	if err != nil {
		return resultSetHeader{}, err
	}
	if len(data) == 0 {
		return resultSetHeader{}, newProtocolError("result set header: empty packet", ErrMalformedPacket)
	}

	switch data[0] {
	case iOK:
		ok, err := parseOKPacket(data, false)
		if err != nil {
			return resultSetHeader{}, err
		}
		return resultSetHeader{isResultSet: false, ok: ok}, nil

	case iERR:
		return resultSetHeader{}, parseErrPacket(data)

	case iLocalInFile:
		filename := string(restOfPacket(data[1:]))
		// The client must still send the empty packet the protocol requires
		// to abort the transfer cleanly, then drain the server's ERR.
		if err := ch.writePacket(ctx, nil); err != nil {
			return resultSetHeader{}, err
		}
		if ack, err := ch.readPacket(ctx); err == nil && len(ack) > 0 && ack[0] == iERR {
			_ = parseErrPacket(ack) // surfaced below via the sentinel instead
		}
		return resultSetHeader{}, fmt.Errorf("%w: server requested %q", ErrLocalInfileUnsupported, filename)
	}

	columnCount, isNull, n, err := readLengthEncodedInteger(data)
	if err != nil || isNull {
		return resultSetHeader{}, newProtocolError("result set header: column count", ErrMalformedPacket)
	}
	_ = n

	columns := make([]FieldMetadata, 0, columnCount)
	for i := uint64(0); i < columnCount; i++ {
		colData, err := ch.readPacket(ctx)
		if err != nil {
			return resultSetHeader{}, err
		}
		fm, err := readColumnDefinition(colData)
		if err != nil {
			return resultSetHeader{}, err
		}
		columns = append(columns, fm)
	}

	if !deprecateEOF {
		eofData, err := ch.readPacket(ctx)
		if err != nil {
			return resultSetHeader{}, err
		}
		if _, err := parseEOFPacket(eofData); err != nil {
			return resultSetHeader{}, err
		}
	}

	return resultSetHeader{isResultSet: true, columns: columns}, nil
}
