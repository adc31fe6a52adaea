package wiremysql

import (
	"bytes"
	"context"
	"testing"
)

func newTestSession(deprecateEOF bool) *session {
	caps := fixedClientCapabilities
	if !deprecateEOF {
		caps &^= clientDeprecateEOF
	}
	return &session{capabilities: caps}
}

func intColumnDefinition(name string) []byte {
	data := appendLengthEncodedString(nil, []byte("def")) // catalog
	data = appendLengthEncodedString(data, []byte(""))    // schema
	data = appendLengthEncodedString(data, []byte(""))    // table
	data = appendLengthEncodedString(data, []byte(""))    // org_table
	data = appendLengthEncodedString(data, []byte(name))  // name
	data = appendLengthEncodedString(data, []byte(name))  // org_name
	data = appendLengthEncodedInteger(data, 0x0c)
	data = append(data, 0x21, 0x00) // character set (utf8_general_ci)
	lenBuf := make([]byte, 4)
	putFixedUint(lenBuf, 11, 4)
	data = append(data, lenBuf...)
	data = append(data, byte(fieldTypeLong))
	data = append(data, 0x00, 0x00) // flags
	data = append(data, 0x00)       // decimals
	data = append(data, 0x00, 0x00) // filler
	return data
}

// TestQueryFetchAllDeprecateEOF drives a full Connection.Query round trip
// with one integer column and two rows, terminated by an OK-as-EOF packet
// (DEPRECATE_EOF negotiated), matching the header-byte-0xfe rule consumeTerminator
// relies on.
func TestQueryFetchAllDeprecateEOF(t *testing.T) {
	colHeader := appendLengthEncodedInteger(nil, 1) // one column
	col := intColumnDefinition("n")

	row1 := appendLengthEncodedString(nil, []byte("1"))
	row2 := appendLengthEncodedString(nil, []byte("2"))

	okTerm := buildOKPacket()
	okTerm[0] = iEOF // OK-as-EOF terminator carries the 0xfe header

	// sendCommand resets the sequence to 0 and writes the COM_QUERY frame as
	// seq 0, so the server's reply frames start at seq 1.
	seq := uint8(1)
	frame := func(payload []byte) []byte {
		p := framePacket(seq, payload)
		seq++
		return p
	}

	var reply bytes.Buffer
	reply.Write(frame(colHeader))
	reply.Write(frame(col))
	reply.Write(frame(row1))
	reply.Write(frame(row2))
	reply.Write(frame(okTerm))

	mt := &mockTransport{queuedReplies: [][]byte{reply.Bytes()}, maxReads: 1000}
	ch := newPacketChannel(mt)
	conn := &Connection{ch: ch, session: newTestSession(true), tracer: noopTracer{}}

	rs, err := conn.Query(context.Background(), "SELECT n FROM t")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Columns()) != 1 || rs.Columns()[0].Name != "n" {
		t.Fatalf("unexpected columns: %+v", rs.Columns())
	}

	rows, err := rs.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	n0, _ := rows[0][0].Int64()
	n1, _ := rows[1][0].Int64()
	if n0 != 1 || n1 != 2 {
		t.Fatalf("unexpected row values: %d, %d", n0, n1)
	}
	if rs.Streaming() {
		t.Fatal("expected the result set to be Complete after FetchAll")
	}
	if conn.active != nil {
		t.Fatal("expected the connection to release its active result set")
	}
}

// TestQueryFetchAllLegacyEOF repeats the round trip without DEPRECATE_EOF,
// exercising the legacy EOF terminator after the column-definition phase and
// again after the row phase.
func TestQueryFetchAllLegacyEOF(t *testing.T) {
	colHeader := appendLengthEncodedInteger(nil, 1)
	col := intColumnDefinition("n")
	legacyEOF := []byte{iEOF, 0x00, 0x00, 0x02, 0x00}
	row1 := appendLengthEncodedString(nil, []byte("7"))

	seq := uint8(1)
	frame := func(payload []byte) []byte {
		p := framePacket(seq, payload)
		seq++
		return p
	}

	var reply bytes.Buffer
	reply.Write(frame(colHeader))
	reply.Write(frame(col))
	reply.Write(frame(legacyEOF)) // end of column-definition phase
	reply.Write(frame(row1))
	reply.Write(frame(legacyEOF)) // end of row phase

	mt := &mockTransport{queuedReplies: [][]byte{reply.Bytes()}, maxReads: 1000}
	ch := newPacketChannel(mt)
	conn := &Connection{ch: ch, session: newTestSession(false), tracer: noopTracer{}}

	rs, err := conn.Query(context.Background(), "SELECT n FROM t")
	if err != nil {
		t.Fatal(err)
	}
	rows, err := rs.FetchAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	n, _ := rows[0][0].Int64()
	if n != 7 {
		t.Fatalf("unexpected value %d", n)
	}
}

func TestBeginCommandRejectsWhileStreaming(t *testing.T) {
	mt := &mockTransport{maxReads: 10}
	conn := &Connection{ch: newPacketChannel(mt), session: newTestSession(true)}
	rs := &ResultSet{conn: conn}
	rs.state.Store(int32(rsStreaming))
	conn.active = rs

	if err := conn.beginCommand(); err != ErrResultSetStreaming {
		t.Fatalf("expected ErrResultSetStreaming, got %v", err)
	}
}

func TestBorrowedRowStaleAfterNextRead(t *testing.T) {
	colHeader := appendLengthEncodedInteger(nil, 1)
	col := intColumnDefinition("n")
	row1 := appendLengthEncodedString(nil, []byte("1"))
	row2 := appendLengthEncodedString(nil, []byte("2"))
	okTerm := buildOKPacket()

	seq := uint8(1)
	frame := func(payload []byte) []byte {
		p := framePacket(seq, payload)
		seq++
		return p
	}
	var reply bytes.Buffer
	reply.Write(frame(colHeader))
	reply.Write(frame(col))
	reply.Write(frame(row1))
	reply.Write(frame(row2))
	reply.Write(frame(okTerm))

	mt := &mockTransport{queuedReplies: [][]byte{reply.Bytes()}, maxReads: 1000}
	ch := newPacketChannel(mt)
	conn := &Connection{ch: ch, session: newTestSession(true), tracer: noopTracer{}}

	rs, err := conn.Query(context.Background(), "SELECT n FROM t")
	if err != nil {
		t.Fatal(err)
	}

	br1, ok, err := rs.FetchOne(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected a first row, got ok=%v err=%v", ok, err)
	}

	if _, _, err := rs.FetchOne(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := br1.Row(); err != ErrStaleRowAccess {
		t.Fatalf("expected ErrStaleRowAccess after a later fetch invalidated br1, got %v", err)
	}

	// Clone still yields the decoded integer: non-byte values never alias
	// the read buffer.
	cloned := br1.Clone()
	n, _ := cloned[0].Int64()
	if n != 1 {
		t.Fatalf("expected the clone to retain its original value 1, got %d", n)
	}
}
