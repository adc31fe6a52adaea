// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors comparable with errors.Is.
var (
	// ErrConnectionPoisoned is reported by any operation attempted on a
	// connection that previously failed with a TransportError or
	// ProtocolError and has been marked unusable.
	ErrConnectionPoisoned = errors.New("wiremysql: connection is poisoned and must be discarded")

	// ErrMalformedPacket is a ProtocolError: a packet could not be parsed
	// according to its expected shape.
	ErrMalformedPacket = errors.New("wiremysql: malformed packet")

	// ErrSequenceMismatch is a ProtocolError: the server's sequence byte did
	// not match the expected next sequence number.
	ErrSequenceMismatch = errors.New("wiremysql: packet sequence mismatch")

	// ErrHandshakeIncompatible is returned when the server's handshake
	// lacks CLIENT_PROTOCOL_41 or CLIENT_SECURE_CONNECTION.
	ErrHandshakeIncompatible = errors.New("wiremysql: server handshake is missing a required capability")

	// ErrAuthPluginUnsupported is returned when the server names an
	// authentication plugin this client has no registered implementation for.
	ErrAuthPluginUnsupported = errors.New("wiremysql: unsupported authentication plugin")

	// ErrWrongNumParams is returned by Statement.Execute when the argument
	// count does not match the prepared statement's parameter count.
	ErrWrongNumParams = errors.New("wiremysql: wrong number of parameters")

	// ErrStatementClosed is returned by Statement.Execute after Close has been
	// called on the statement, or after its owning Connection has been closed.
	ErrStatementClosed = errors.New("wiremysql: statement is closed")

	// ErrResultSetStreaming is returned when a new command is attempted
	// while a previous ResultSet on the same connection is still Streaming.
	ErrResultSetStreaming = errors.New("wiremysql: a result set is still streaming on this connection")

	// ErrLocalInfileUnsupported is returned when the server requests
	// LOAD DATA LOCAL INFILE; the capability is permanently disabled.
	ErrLocalInfileUnsupported = errors.New("wiremysql: LOAD DATA LOCAL INFILE is not supported")

	// ErrStaleRowAccess is returned when a borrowed Row is used after a
	// subsequent channel read has invalidated it.
	ErrStaleRowAccess = errors.New("wiremysql: borrowed row accessed after a later fetch invalidated it")
)

// TransportError wraps a failure from the underlying Transport (connect,
// read, or write). The connection becomes unusable after one is returned.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wiremysql: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: errors.Wrap(err, op)}
}

// ProtocolError reports a malformed frame, unexpected packet shape, or a
// sequence-number mismatch. The connection becomes unusable.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wiremysql: protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("wiremysql: protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func newProtocolError(reason string, err error) *ProtocolError {
	return &ProtocolError{Reason: reason, Err: err}
}

// ServerError is surfaced verbatim from an ERR packet. The connection
// remains usable unless the error ended the session.
type ServerError struct {
	Code    uint16
	State   string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("wiremysql: server error %d (%s): %s", e.Code, e.State, e.Message)
}

// Is reports whether target is a *ServerError with the same code, so callers
// can match with errors.Is(err, &ServerError{Code: 1146}). A target whose
// Code is 0 matches any *ServerError.
func (e *ServerError) Is(target error) bool {
	other, ok := target.(*ServerError)
	if !ok {
		return false
	}
	if other.Code == 0 {
		return true
	}
	return other.Code == e.Code
}
