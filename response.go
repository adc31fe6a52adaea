// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

// okPacket is the decoded body of an OK packet: affected rows, last insert
// id, server status, and warning count, shared by the handshake result,
// COM_QUERY, and COM_STMT_EXECUTE pipelines.
type okPacket struct {
	affectedRows uint64
	lastInsertID uint64
	statusFlags  serverStatusFlag
	warnings     uint16
	info         string
}

// parseOKPacket decodes an OK packet body. headerStripped reports whether
// data[0] (the 0x00/0xfe header byte) has already been removed; callers that
// pass the whole packet, header byte included, pass false.
func parseOKPacket(data []byte, headerStripped bool) (okPacket, error) {
	var ok okPacket
	pos := 0
	if !headerStripped {
		if len(data) == 0 || (data[0] != iOK && data[0] != iEOF) {
			return ok, newProtocolError("OK packet: bad header", ErrMalformedPacket)
		}
		pos = 1
	}

	affected, _, n, err := readLengthEncodedInteger(data[pos:])
	if err != nil {
		return ok, newProtocolError("OK packet: affected_rows", err)
	}
	ok.affectedRows = affected
	pos += n

	lastID, _, n, err := readLengthEncodedInteger(data[pos:])
	if err != nil {
		return ok, newProtocolError("OK packet: last_insert_id", err)
	}
	ok.lastInsertID = lastID
	pos += n

	if len(data) < pos+4 {
		return ok, newProtocolError("OK packet: truncated status/warnings", ErrMalformedPacket)
	}
	ok.statusFlags = serverStatusFlag(getUint16(data[pos : pos+2]))
	pos += 2
	ok.warnings = getUint16(data[pos : pos+2])
	pos += 2

	if pos < len(data) {
		ok.info = string(restOfPacket(data[pos:]))
	}

	return ok, nil
}

// eofPacket is the legacy (pre DEPRECATE_EOF) terminator for the
// column-definition and row phases of a text result set.
type eofPacket struct {
	warnings    uint16
	statusFlags serverStatusFlag
}

func parseEOFPacket(data []byte) (eofPacket, error) {
	var e eofPacket
	if len(data) < 5 || data[0] != iEOF {
		return e, newProtocolError("EOF packet: bad header", ErrMalformedPacket)
	}
	e.warnings = getUint16(data[1:3])
	e.statusFlags = serverStatusFlag(getUint16(data[3:5]))
	return e, nil
}

// isEOFPacket reports whether data looks like a legacy EOF packet (header
// 0xfe and short enough not to be a lenenc-integer column count spilling
// into the same byte value).
func isEOFPacket(data []byte) bool {
	return len(data) > 0 && data[0] == iEOF && len(data) < 9
}

// parseErrPacket decodes an ERR packet into a *ServerError.
func parseErrPacket(data []byte) error {
	if len(data) < 3 || data[0] != iERR {
		return newProtocolError("ERR packet: bad header", ErrMalformedPacket)
	}
	code := getUint16(data[1:3])
	pos := 3

	state := ""
	if len(data) > pos && data[pos] == '#' {
		if len(data) < pos+6 {
			return newProtocolError("ERR packet: truncated sql_state", ErrMalformedPacket)
		}
		state = string(data[pos+1 : pos+6])
		pos += 6
	}

	message := string(restOfPacket(data[pos:]))

	return &ServerError{
		Code:    code,
		State:   state,
		Message: message,
	}
}
