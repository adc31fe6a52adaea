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
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindDate
	KindDateTime
	KindTime
	KindString
	KindBlob
	// KindDecimal holds DECIMAL/NEWDECIMAL columns as an exact
	// shopspring/decimal.Decimal instead of losing precision as a float or
	// opaque string.
	KindDecimal
)

// Date is the {y,m,d} temporal variant. Valid range: year 0-9999, month
// 1-12, day 1-31; MySQL's zero-date (0000-00-00) is represented as the zero
// value and is considered valid.
type Date struct {
	Year, Month, Day int
}

func (d Date) validate() error {
	if d.Year == 0 && d.Month == 0 && d.Day == 0 {
		return nil
	}
	if d.Year < 0 || d.Year > 9999 || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return fmt.Errorf("wiremysql: date %04d-%02d-%02d out of range", d.Year, d.Month, d.Day)
	}
	return nil
}

// DateTime extends Date with a time-of-day and microseconds.
type DateTime struct {
	Year, Month, Day       int
	Hour, Minute, Second   int
	Microsecond            int
}

func (d DateTime) validate() error {
	if err := (Date{d.Year, d.Month, d.Day}).validate(); err != nil {
		return err
	}
	if d.Hour < 0 || d.Hour > 23 || d.Minute < 0 || d.Minute > 59 || d.Second < 0 || d.Second > 59 {
		return fmt.Errorf("wiremysql: datetime time-of-day out of range")
	}
	return nil
}

// Time is MySQL's signed interval type: up to 838:59:59, possibly negative.
type Time struct {
	Negative               bool
	Days                   int
	Hour, Minute, Second   int
	Microsecond            int
}

func (t Time) validate() error {
	totalHours := t.Days*24 + t.Hour
	if totalHours > 838 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return fmt.Errorf("wiremysql: time value out of range")
	}
	return nil
}

// Value holds exactly one of Null, signed/unsigned 64-bit integer, 32/64-bit
// float, date, datetime, time, string, blob, or decimal at a time, selected
// by Kind.
type Value struct {
	Kind ValueKind

	i64 int64
	u64 uint64
	f32 float32
	f64 float64
	dt  DateTime
	tm  Time
	raw []byte
	dec decimal.Decimal
}

func NullValue() Value                { return Value{Kind: KindNull} }
func Int64Value(v int64) Value        { return Value{Kind: KindInt64, i64: v} }
func Uint64Value(v uint64) Value      { return Value{Kind: KindUint64, u64: v} }
func Float32Value(v float32) Value    { return Value{Kind: KindFloat32, f32: v} }
func Float64Value(v float64) Value    { return Value{Kind: KindFloat64, f64: v} }
func StringValue(b []byte) Value      { return Value{Kind: KindString, raw: b} }
func BlobValue(b []byte) Value        { return Value{Kind: KindBlob, raw: b} }
func DecimalValue(d decimal.Decimal) Value { return Value{Kind: KindDecimal, dec: d} }

func DateValue(d Date) (Value, error) {
	if err := d.validate(); err != nil {
		return Value{}, err
	}
	return Value{Kind: KindDate, dt: DateTime{Year: d.Year, Month: d.Month, Day: d.Day}}, nil
}

func DateTimeValue(d DateTime) (Value, error) {
	if err := d.validate(); err != nil {
		return Value{}, err
	}
	return Value{Kind: KindDateTime, dt: d}, nil
}

func TimeValue(t Time) (Value, error) {
	if err := t.validate(); err != nil {
		return Value{}, err
	}
	return Value{Kind: KindTime, tm: t}, nil
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) Int64() (int64, bool) {
	if v.Kind != KindInt64 {
		return 0, false
	}
	return v.i64, true
}

func (v Value) Uint64() (uint64, bool) {
	if v.Kind != KindUint64 {
		return 0, false
	}
	return v.u64, true
}

func (v Value) Float32() (float32, bool) {
	if v.Kind != KindFloat32 {
		return 0, false
	}
	return v.f32, true
}

func (v Value) Float64() (float64, bool) {
	if v.Kind != KindFloat64 {
		return 0, false
	}
	return v.f64, true
}

func (v Value) Date() (Date, bool) {
	if v.Kind != KindDate {
		return Date{}, false
	}
	return Date{v.dt.Year, v.dt.Month, v.dt.Day}, true
}

func (v Value) DateTime() (DateTime, bool) {
	if v.Kind != KindDateTime {
		return DateTime{}, false
	}
	return v.dt, true
}

func (v Value) Time() (Time, bool) {
	if v.Kind != KindTime {
		return Time{}, false
	}
	return v.tm, true
}

// Bytes returns the raw bytes for String/Blob kinds. The slice may alias a
// connection read buffer if this Value came from a borrowed Row.
func (v Value) Bytes() ([]byte, bool) {
	if v.Kind != KindString && v.Kind != KindBlob {
		return nil, false
	}
	return v.raw, true
}

func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.Kind != KindDecimal {
		return decimal.Decimal{}, false
	}
	return v.dec, true
}

// clone returns a deep copy of v, duplicating any bytes that might alias a
// connection's read buffer. Used to produce owning rows.
func (v Value) clone() Value {
	if v.raw == nil {
		return v
	}
	cp := make([]byte, len(v.raw))
	copy(cp, v.raw)
	v.raw = cp
	return v
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "<null>"
	case KindInt64:
		return strconv.FormatInt(v.i64, 10)
	case KindUint64:
		return strconv.FormatUint(v.u64, 10)
	case KindFloat32:
		return strconv.FormatFloat(float64(v.f32), 'g', -1, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.f64, 'g', -1, 64)
	case KindDate:
		return fmt.Sprintf("%04d-%02d-%02d", v.dt.Year, v.dt.Month, v.dt.Day)
	case KindDateTime:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%06d",
			v.dt.Year, v.dt.Month, v.dt.Day, v.dt.Hour, v.dt.Minute, v.dt.Second, v.dt.Microsecond)
	case KindTime:
		sign := ""
		if v.tm.Negative {
			sign = "-"
		}
		return fmt.Sprintf("%s%03d:%02d:%02d.%06d", sign, v.tm.Days*24+v.tm.Hour, v.tm.Minute, v.tm.Second, v.tm.Microsecond)
	case KindString, KindBlob:
		return string(v.raw)
	case KindDecimal:
		return v.dec.String()
	default:
		return ""
	}
}

// Row is an ordered sequence of Values matching a result set's column
// count. The Row inside a BorrowedRow from FetchOne borrows from the
// channel's read buffer; rows returned by FetchMany/FetchAll are deep-copied
// (owning).
type Row []Value

// clone returns a deep, owning copy of the row.
func (r Row) clone() Row {
	out := make(Row, len(r))
	for i, v := range r {
		out[i] = v.clone()
	}
	return out
}

// --- text codec ---

// decodeTextValue interprets one text-protocol field: either the single
// byte 0xFB (NULL) or a lenenc-string, converted per the column's type code.
func decodeTextValue(fm *FieldMetadata, data []byte) (Value, int, error) {
	if len(data) > 0 && data[0] == lenencNull {
		return NullValue(), 1, nil
	}

	raw, isNull, n, err := readLengthEncodedString(data)
	if err != nil {
		return Value{}, n, newProtocolError("text value", err)
	}
	if isNull {
		return NullValue(), n, nil
	}

	v, err := decodeTextBytes(fm, raw)
	return v, n, err
}

func decodeTextBytes(fm *FieldMetadata, raw []byte) (Value, error) {
	s := string(raw)
	switch fm.Type {
	case fieldTypeTiny, fieldTypeShort, fieldTypeLong, fieldTypeInt24, fieldTypeLongLong, fieldTypeYear:
		if fm.Unsigned() {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return Value{}, newProtocolError("text int parse", err)
			}
			return Uint64Value(u), nil
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, newProtocolError("text int parse", err)
		}
		return Int64Value(i), nil

	case fieldTypeFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, newProtocolError("text float parse", err)
		}
		return Float32Value(float32(f)), nil

	case fieldTypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, newProtocolError("text double parse", err)
		}
		return Float64Value(f), nil

	case fieldTypeDecimal, fieldTypeNewDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, newProtocolError("text decimal parse", err)
		}
		return DecimalValue(d), nil

	case fieldTypeDate, fieldTypeNewDate:
		return parseTextDate(s)

	case fieldTypeDateTime, fieldTypeTimestamp:
		return parseTextDateTime(s)

	case fieldTypeTime:
		return parseTextTime(s)

	default:
		if fm.CharacterSet == binaryCollationID {
			return BlobValue(raw), nil
		}
		return StringValue(raw), nil
	}
}

func parseTextDate(s string) (Value, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Value{}, newProtocolError("text date parse", fmt.Errorf("malformed date %q", s))
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Value{}, newProtocolError("text date parse", fmt.Errorf("malformed date %q", s))
	}
	return DateValue(Date{y, m, d})
}

func parseTextDateTime(s string) (Value, error) {
	datePart := s
	timePart := ""
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		datePart = s[:idx]
		timePart = s[idx+1:]
	}
	dv, err := parseTextDate(datePart)
	if err != nil {
		return Value{}, err
	}
	d, _ := dv.Date()
	dt := DateTime{Year: d.Year, Month: d.Month, Day: d.Day}
	if timePart != "" {
		h, mi, sec, us, err := parseTimeOfDay(timePart)
		if err != nil {
			return Value{}, err
		}
		dt.Hour, dt.Minute, dt.Second, dt.Microsecond = h, mi, sec, us
	}
	return DateTimeValue(dt)
}

func parseTimeOfDay(s string) (h, mi, sec, us int, err error) {
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		frac = s[idx+1:]
		s = s[:idx]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, 0, newProtocolError("time-of-day parse", fmt.Errorf("malformed time %q", s))
	}
	var e1, e2, e3 error
	h, e1 = strconv.Atoi(parts[0])
	mi, e2 = strconv.Atoi(parts[1])
	sec, e3 = strconv.Atoi(parts[2])
	if e1 != nil || e2 != nil || e3 != nil {
		return 0, 0, 0, 0, newProtocolError("time-of-day parse", fmt.Errorf("malformed time %q", s))
	}
	if frac != "" {
		for len(frac) < 6 {
			frac += "0"
		}
		us, _ = strconv.Atoi(frac[:6])
	}
	return h, mi, sec, us, nil
}

func parseTextTime(s string) (Value, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	h, mi, sec, us, err := parseTimeOfDay(s)
	if err != nil {
		return Value{}, err
	}
	return TimeValue(Time{Negative: neg, Days: h / 24, Hour: h % 24, Minute: mi, Second: sec, Microsecond: us})
}

// --- binary codec ---

// decodeBinaryRow parses one COM_STMT_EXECUTE result row: a 0x00 header
// byte, a null-bitmap of ceil((numColumns+2)/8) bytes, then each non-null
// column's binary-encoded value in column order.
func decodeBinaryRow(columns []FieldMetadata, data []byte) (Row, error) {
	if len(data) == 0 || data[0] != iOK {
		return nil, newProtocolError("binary row header", ErrMalformedPacket)
	}

	bitmapLen := (len(columns) + 7 + 2) / 8
	if len(data) < 1+bitmapLen {
		return nil, newProtocolError("binary row null-bitmap", ErrMalformedPacket)
	}
	nullBitmap := data[1 : 1+bitmapLen]
	pos := 1 + bitmapLen

	row := make(Row, len(columns))
	for i := range columns {
		if nullBitmap[(i+2)/8]>>uint((i+2)%8)&1 == 1 {
			row[i] = NullValue()
			continue
		}
		v, n, err := decodeBinaryValue(&columns[i], data[pos:])
		if err != nil {
			return nil, err
		}
		row[i] = v
		pos += n
	}
	return row, nil
}

func decodeBinaryValue(fm *FieldMetadata, data []byte) (Value, int, error) {
	switch fm.Type {
	case fieldTypeTiny:
		if len(data) < 1 {
			return Value{}, 0, newProtocolError("binary tiny", ErrMalformedPacket)
		}
		if fm.Unsigned() {
			return Uint64Value(uint64(data[0])), 1, nil
		}
		return Int64Value(int64(int8(data[0]))), 1, nil

	case fieldTypeShort, fieldTypeYear:
		if len(data) < 2 {
			return Value{}, 0, newProtocolError("binary short", ErrMalformedPacket)
		}
		u := getUint16(data[:2])
		if fm.Unsigned() {
			return Uint64Value(uint64(u)), 2, nil
		}
		return Int64Value(int64(int16(u))), 2, nil

	case fieldTypeInt24, fieldTypeLong:
		if len(data) < 4 {
			return Value{}, 0, newProtocolError("binary long", ErrMalformedPacket)
		}
		u := uint32(getFixedUint(data[:4], 4))
		if fm.Unsigned() {
			return Uint64Value(uint64(u)), 4, nil
		}
		return Int64Value(int64(int32(u))), 4, nil

	case fieldTypeLongLong:
		if len(data) < 8 {
			return Value{}, 0, newProtocolError("binary longlong", ErrMalformedPacket)
		}
		u := getFixedUint(data[:8], 8)
		if fm.Unsigned() {
			return Uint64Value(u), 8, nil
		}
		return Int64Value(int64(u)), 8, nil

	case fieldTypeFloat:
		if len(data) < 4 {
			return Value{}, 0, newProtocolError("binary float", ErrMalformedPacket)
		}
		bits := uint32(getFixedUint(data[:4], 4))
		return Float32Value(math.Float32frombits(bits)), 4, nil

	case fieldTypeDouble:
		if len(data) < 8 {
			return Value{}, 0, newProtocolError("binary double", ErrMalformedPacket)
		}
		bits := getFixedUint(data[:8], 8)
		return Float64Value(math.Float64frombits(bits)), 8, nil

	case fieldTypeVarChar, fieldTypeVarString, fieldTypeString, fieldTypeBLOB,
		fieldTypeTinyBLOB, fieldTypeMediumBLOB, fieldTypeLongBLOB,
		fieldTypeDecimal, fieldTypeNewDecimal, fieldTypeBit, fieldTypeEnum,
		fieldTypeSet, fieldTypeGeometry, fieldTypeJSON:
		raw, isNull, n, err := readLengthEncodedString(data)
		if err != nil {
			return Value{}, 0, newProtocolError("binary lenenc-string", err)
		}
		if isNull {
			return NullValue(), n, nil
		}
		if fm.Type == fieldTypeDecimal || fm.Type == fieldTypeNewDecimal {
			d, err := decimal.NewFromString(string(raw))
			if err != nil {
				return Value{}, 0, newProtocolError("binary decimal parse", err)
			}
			return DecimalValue(d), n, nil
		}
		if fm.CharacterSet == binaryCollationID {
			return BlobValue(raw), n, nil
		}
		return StringValue(raw), n, nil

	case fieldTypeDate, fieldTypeNewDate, fieldTypeDateTime, fieldTypeTimestamp:
		return decodeBinaryTemporal(data, fm.Type == fieldTypeDate || fm.Type == fieldTypeNewDate)

	case fieldTypeTime:
		return decodeBinaryTime(data)

	default:
		return Value{}, 0, newProtocolError("binary value", fmt.Errorf("unsupported field type %d", fm.Type))
	}
}

func decodeBinaryTemporal(data []byte, dateOnly bool) (Value, int, error) {
	if len(data) < 1 {
		return Value{}, 0, newProtocolError("binary temporal length", ErrMalformedPacket)
	}
	length := int(data[0])
	n := 1 + length
	if len(data) < n {
		return Value{}, 0, newProtocolError("binary temporal body", ErrMalformedPacket)
	}
	body := data[1:n]

	var dt DateTime
	switch length {
	case 0:
		// zero value
	case 4, 7, 11:
		dt.Year = int(getUint16(body[0:2]))
		dt.Month = int(body[2])
		dt.Day = int(body[3])
		if length >= 7 {
			dt.Hour = int(body[4])
			dt.Minute = int(body[5])
			dt.Second = int(body[6])
		}
		if length == 11 {
			dt.Microsecond = int(getFixedUint(body[7:11], 4))
		}
	default:
		return Value{}, 0, newProtocolError("binary temporal length", fmt.Errorf("invalid length %d", length))
	}

	if dateOnly {
		v, err := DateValue(Date{dt.Year, dt.Month, dt.Day})
		return v, n, err
	}
	v, err := DateTimeValue(dt)
	return v, n, err
}

func decodeBinaryTime(data []byte) (Value, int, error) {
	if len(data) < 1 {
		return Value{}, 0, newProtocolError("binary time length", ErrMalformedPacket)
	}
	length := int(data[0])
	n := 1 + length
	if len(data) < n {
		return Value{}, 0, newProtocolError("binary time body", ErrMalformedPacket)
	}
	body := data[1:n]

	var t Time
	switch length {
	case 0:
	case 8, 12:
		t.Negative = body[0] == 1
		t.Days = int(getFixedUint(body[1:5], 4))
		t.Hour = int(body[5])
		t.Minute = int(body[6])
		t.Second = int(body[7])
		if length == 12 {
			t.Microsecond = int(getFixedUint(body[8:12], 4))
		}
	default:
		return Value{}, 0, newProtocolError("binary time length", fmt.Errorf("invalid length %d", length))
	}

	v, err := TimeValue(t)
	return v, n, err
}

// encodeBinaryParam appends the COM_STMT_EXECUTE wire form for v, returning
// the (type, unsigned-flag) pair to be written into the parameter type
// block and the encoded value bytes (empty for NULL — NULL parameters
// contribute only a null-bitmap bit, no value bytes).
func encodeBinaryParam(v Value) (typ fieldType, unsigned bool, encoded []byte, err error) {
	switch v.Kind {
	case KindNull:
		return fieldTypeNULL, false, nil, nil

	case KindInt64:
		b := make([]byte, 8)
		putFixedUint(b, uint64(v.i64), 8)
		return fieldTypeLongLong, false, b, nil

	case KindUint64:
		b := make([]byte, 8)
		putFixedUint(b, v.u64, 8)
		return fieldTypeLongLong, true, b, nil

	case KindFloat32:
		b := make([]byte, 4)
		putFixedUint(b, uint64(math.Float32bits(v.f32)), 4)
		return fieldTypeFloat, false, b, nil

	case KindFloat64:
		b := make([]byte, 8)
		putFixedUint(b, math.Float64bits(v.f64), 8)
		return fieldTypeDouble, false, b, nil

	case KindString:
		return fieldTypeString, false, appendLengthEncodedString(nil, v.raw), nil

	case KindBlob:
		return fieldTypeBLOB, false, appendLengthEncodedString(nil, v.raw), nil

	case KindDecimal:
		return fieldTypeNewDecimal, false, appendLengthEncodedString(nil, []byte(v.dec.String())), nil

	case KindDate:
		return fieldTypeDate, false, encodeBinaryDate(v.dt), nil

	case KindDateTime:
		return fieldTypeDateTime, false, encodeBinaryDateTime(v.dt), nil

	case KindTime:
		return fieldTypeTime, false, encodeBinaryTimeValue(v.tm), nil

	default:
		return 0, false, nil, fmt.Errorf("wiremysql: cannot encode value kind %d as a parameter", v.Kind)
	}
}

func encodeBinaryDate(dt DateTime) []byte {
	if dt.Year == 0 && dt.Month == 0 && dt.Day == 0 {
		return []byte{0}
	}
	b := make([]byte, 5)
	b[0] = 4
	b[1] = byte(dt.Year)
	b[2] = byte(dt.Year >> 8)
	b[3] = byte(dt.Month)
	b[4] = byte(dt.Day)
	return b
}

func encodeBinaryDateTime(dt DateTime) []byte {
	if dt.Year == 0 && dt.Month == 0 && dt.Day == 0 && dt.Hour == 0 && dt.Minute == 0 && dt.Second == 0 && dt.Microsecond == 0 {
		return []byte{0}
	}
	length := byte(7)
	if dt.Microsecond != 0 {
		length = 11
	}
	b := make([]byte, 1+int(length))
	b[0] = length
	b[1] = byte(dt.Year)
	b[2] = byte(dt.Year >> 8)
	b[3] = byte(dt.Month)
	b[4] = byte(dt.Day)
	b[5] = byte(dt.Hour)
	b[6] = byte(dt.Minute)
	b[7] = byte(dt.Second)
	if length == 11 {
		putFixedUint(b[8:12], uint64(dt.Microsecond), 4)
	}
	return b
}

func encodeBinaryTimeValue(t Time) []byte {
	if !t.Negative && t.Days == 0 && t.Hour == 0 && t.Minute == 0 && t.Second == 0 && t.Microsecond == 0 {
		return []byte{0}
	}
	length := byte(8)
	if t.Microsecond != 0 {
		length = 12
	}
	b := make([]byte, 1+int(length))
	b[0] = length
	if t.Negative {
		b[1] = 1
	}
	putFixedUint(b[2:6], uint64(t.Days), 4)
	b[6] = byte(t.Hour)
	b[7] = byte(t.Minute)
	b[8] = byte(t.Second)
	if length == 12 {
		putFixedUint(b[9:13], uint64(t.Microsecond), 4)
	}
	return b
}
