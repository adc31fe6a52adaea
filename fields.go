// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

// FieldMetadata describes one result-set column, decoded from a
// column-definition packet. It is immutable once the column-definition
// phase completes.
type FieldMetadata struct {
	Schema        string
	Table         string
	OrgTable      string
	Name          string
	OrgName       string
	CharacterSet  uint16
	ColumnLength  uint32
	Type          fieldType
	Flags         fieldFlag
	Decimals      byte
}

// Unsigned reports whether the column's UNSIGNED flag is set.
func (f *FieldMetadata) Unsigned() bool { return f.Flags&flagUnsigned != 0 }

// NotNull reports whether the column's NOT NULL flag is set.
func (f *FieldMetadata) NotNull() bool { return f.Flags&flagNotNULL != 0 }

// PrimaryKey reports whether the column is (part of) the primary key.
func (f *FieldMetadata) PrimaryKey() bool { return f.Flags&flagPriKey != 0 }

// readColumnDefinition parses one column-definition (or param-definition)
// packet body, the shape used by both COM_QUERY's header and
// COM_STMT_PREPARE's param/column metadata.
func readColumnDefinition(data []byte) (FieldMetadata, error) {
	var fm FieldMetadata
	pos := 0

	// catalog, always "def" - skip
	n, err := skipLengthEncodedString(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: catalog", err)
	}
	pos += n

	schema, _, n, err := readLengthEncodedString(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: schema", err)
	}
	fm.Schema = string(schema)
	pos += n

	table, _, n, err := readLengthEncodedString(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: table", err)
	}
	fm.Table = string(table)
	pos += n

	orgTable, _, n, err := readLengthEncodedString(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: org_table", err)
	}
	fm.OrgTable = string(orgTable)
	pos += n

	name, _, n, err := readLengthEncodedString(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: name", err)
	}
	fm.Name = string(name)
	pos += n

	orgName, _, n, err := readLengthEncodedString(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: org_name", err)
	}
	fm.OrgName = string(orgName)
	pos += n

	// length of fixed-length fields, always 0x0c - skip
	_, _, n, err = readLengthEncodedInteger(data[pos:])
	if err != nil {
		return fm, newProtocolError("column definition: fixed-length marker", err)
	}
	pos += n

	if len(data) < pos+10 {
		return fm, newProtocolError("column definition: truncated fixed block", ErrMalformedPacket)
	}

	fm.CharacterSet = getUint16(data[pos : pos+2])
	pos += 2
	fm.ColumnLength = uint32(getFixedUint(data[pos:pos+4], 4))
	pos += 4
	fm.Type = fieldType(data[pos])
	pos++
	fm.Flags = fieldFlag(getUint16(data[pos : pos+2]))
	pos += 2
	fm.Decimals = data[pos]
	pos++
	// 2 filler bytes follow; default value (lenenc binary) may follow in the
	// COM_FIELD_LIST variant, not used here.

	return fm, nil
}

func getUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
