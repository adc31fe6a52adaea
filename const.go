// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

// Package wiremysql implements the client side of the MySQL/MariaDB
// client-server wire protocol: packet framing, handshake and authentication,
// text and prepared-statement query pipelines, and result-set streaming.
//
// TLS negotiation, compression, the caching_sha2/SSPI auth variants,
// connection pooling and schema discovery are treated as external
// collaborators and are not implemented here.
package wiremysql

// protocolVersion is the only handshake protocol version this client speaks.
const protocolVersion = 10

// minProtocolVersion is the floor accepted from readInitPacket.
const minProtocolVersion = 10

// maxPacketSize is the largest payload a single packet frame may carry
// (2^24 - 1 bytes); longer payloads are split into continuation frames.
const maxPacketSize = 1<<24 - 1

// defaultMaxPacketSize is advertised to the server during the handshake
// response as this client's own max-packet-size.
const defaultMaxPacketSize = 1<<24 - 1

// defaultCollation is utf8mb4_general_ci, sent when Config.Collation is unset.
const defaultCollation = 45

// commandType is a COM_* command byte, the first byte of every
// client-initiated command packet.
type commandType byte

const (
	comQuit        commandType = 0x01
	comQuery       commandType = 0x03
	comPing        commandType = 0x0e
	comStmtPrepare commandType = 0x16
	comStmtExecute commandType = 0x17
	comStmtClose   commandType = 0x19
)

// response header bytes that disambiguate OK / ERR / column-count / local-infile.
const (
	iOK          byte = 0x00
	iLocalInFile byte = 0xfb
	iEOF         byte = 0xfe
	iERR         byte = 0xff
)

// lenenc integer prefix bytes, see §4.2.
const (
	lenencNull  byte = 0xfb
	lenenc2Byte byte = 0xfc
	lenenc3Byte byte = 0xfd
	lenenc8Byte byte = 0xfe
)

// capabilityFlag is a bit in the 32-bit handshake capability bitfield.
type capabilityFlag uint32

const (
	clientLongPassword capabilityFlag = 1 << iota
	clientFoundRows
	clientLongFlag
	clientConnectWithDB
	clientNoSchema
	clientCompress
	clientODBC
	clientLocalFiles
	clientIgnoreSpace
	clientProtocol41
	clientInteractive
	clientSSL
	clientIgnoreSIGPIPE
	clientTransactions
	clientReserved
	clientSecureConn
	clientMultiStatements
	clientMultiResults
	clientPSMultiResults
	clientPluginAuth
	clientConnectAttrs
	clientPluginAuthLenencClientData
	clientCanHandleExpiredPasswords
	clientSessionTrack
	clientDeprecateEOF
)

// fixedClientCapabilities are the flags this client may request; the actual
// negotiated set is fixedClientCapabilities & server capabilities, per §4.4.
const fixedClientCapabilities = clientLongPassword |
	clientLongFlag |
	clientProtocol41 |
	clientTransactions |
	clientSecureConn |
	clientMultiResults |
	clientPSMultiResults |
	clientPluginAuth |
	clientPluginAuthLenencClientData |
	clientDeprecateEOF

// serverStatusFlag is a bit in the 16-bit status-flags field carried by OK
// and EOF packets.
type serverStatusFlag uint16

const (
	statusInTrans            serverStatusFlag = 0x0001
	statusInAutocommit       serverStatusFlag = 0x0002
	statusMoreResultsExists  serverStatusFlag = 0x0008
	statusNoGoodIndexUsed    serverStatusFlag = 0x0010
	statusNoIndexUsed        serverStatusFlag = 0x0020
	statusCursorExists       serverStatusFlag = 0x0040
	statusLastRowSent        serverStatusFlag = 0x0080
	statusDbDropped          serverStatusFlag = 0x0100
	statusNoBackslashEscapes serverStatusFlag = 0x0200
	statusMetadataChanged    serverStatusFlag = 0x0400
	statusWasSlow            serverStatusFlag = 0x0800
	statusOutputParams       serverStatusFlag = 0x1000
)

// fieldType is the MySQL column type code, carried in column-definition and
// binary-row packets.
type fieldType byte

const (
	fieldTypeDecimal fieldType = iota
	fieldTypeTiny
	fieldTypeShort
	fieldTypeLong
	fieldTypeFloat
	fieldTypeDouble
	fieldTypeNULL
	fieldTypeTimestamp
	fieldTypeLongLong
	fieldTypeInt24
	fieldTypeDate
	fieldTypeTime
	fieldTypeDateTime
	fieldTypeYear
	fieldTypeNewDate
	fieldTypeVarChar
	fieldTypeBit
)

const (
	fieldTypeJSON fieldType = iota + 0xf5
	fieldTypeNewDecimal
	fieldTypeEnum
	fieldTypeSet
	fieldTypeTinyBLOB
	fieldTypeMediumBLOB
	fieldTypeLongBLOB
	fieldTypeBLOB
	fieldTypeVarString
	fieldTypeString
	fieldTypeGeometry
)

// fieldFlag is a bit in the column-definition flags field.
type fieldFlag uint16

const (
	flagNotNULL fieldFlag = 1 << iota
	flagPriKey
	flagUniqueKey
	flagMultipleKey
	flagBLOB
	flagUnsigned
	flagZeroFill
	flagBinary
	flagEnum
	flagAutoIncrement
	flagTimestamp
	flagSet
)

// binaryCollationID is the collation id MySQL uses for "binary" columns;
// text columns carrying it decode to Blob rather than String (§4.7).
const binaryCollationID = 63
