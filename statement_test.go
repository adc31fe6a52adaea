package wiremysql

import (
	"context"
	"testing"
)

func buildPrepareOKHeader(stmtID uint32, numColumns, numParams uint16) []byte {
	data := []byte{iOK}
	idBuf := make([]byte, 4)
	putFixedUint(idBuf, uint64(stmtID), 4)
	data = append(data, idBuf...)

	colBuf := make([]byte, 2)
	putFixedUint(colBuf, uint64(numColumns), 2)
	data = append(data, colBuf...)

	paramBuf := make([]byte, 2)
	putFixedUint(paramBuf, uint64(numParams), 2)
	data = append(data, paramBuf...)

	data = append(data, 0x00)       // filler
	data = append(data, 0x00, 0x00) // warning count
	return data
}

func newTestConnection(mt *mockTransport, deprecateEOF bool) *Connection {
	return &Connection{ch: newPacketChannel(mt), session: newTestSession(deprecateEOF), tracer: noopTracer{}}
}

// TestPrepareStatementParsesHeaderAndDefinitions prepares a statement with
// one parameter and one result column, both definitions immediately
// following the OK header with DEPRECATE_EOF negotiated (no trailing EOF
// frames after either phase).
func TestPrepareStatementParsesHeaderAndDefinitions(t *testing.T) {
	prepareOK := buildPrepareOKHeader(7, 1, 1)
	paramDef := intColumnDefinition("?")
	colDef := intColumnDefinition("n")

	seq := uint8(1)
	frame := func(payload []byte) []byte {
		p := framePacket(seq, payload)
		seq++
		return p
	}

	var reply []byte
	reply = append(reply, frame(prepareOK)...)
	reply = append(reply, frame(paramDef)...)
	reply = append(reply, frame(colDef)...)

	mt := &mockTransport{queuedReplies: [][]byte{reply}, maxReads: 100}
	conn := newTestConnection(mt, true)

	stmt, err := prepareStatement(context.Background(), conn, "SELECT n FROM t WHERE n = ?")
	if err != nil {
		t.Fatal(err)
	}
	if stmt.id != 7 {
		t.Errorf("unexpected statement id %d", stmt.id)
	}
	if stmt.NumParams() != 1 {
		t.Errorf("unexpected NumParams %d", stmt.NumParams())
	}
	if len(stmt.Columns()) != 1 || stmt.Columns()[0].Name != "n" {
		t.Errorf("unexpected columns: %+v", stmt.Columns())
	}
}

// TestPrepareStatementLegacyEOF repeats the shape without DEPRECATE_EOF,
// exercising the trailing EOF frame after each definition phase.
func TestPrepareStatementLegacyEOF(t *testing.T) {
	prepareOK := buildPrepareOKHeader(3, 0, 1)
	paramDef := intColumnDefinition("?")
	legacyEOF := []byte{iEOF, 0x00, 0x00, 0x02, 0x00}

	seq := uint8(1)
	frame := func(payload []byte) []byte {
		p := framePacket(seq, payload)
		seq++
		return p
	}

	var reply []byte
	reply = append(reply, frame(prepareOK)...)
	reply = append(reply, frame(paramDef)...)
	reply = append(reply, frame(legacyEOF)...)

	mt := &mockTransport{queuedReplies: [][]byte{reply}, maxReads: 100}
	conn := newTestConnection(mt, false)

	stmt, err := prepareStatement(context.Background(), conn, "DELETE FROM t WHERE n = ?")
	if err != nil {
		t.Fatal(err)
	}
	if stmt.NumParams() != 1 || len(stmt.Columns()) != 0 {
		t.Fatalf("unexpected shape: numParams=%d columns=%+v", stmt.NumParams(), stmt.Columns())
	}
}

func TestPrepareStatementServerError(t *testing.T) {
	var errPkt []byte
	errPkt = append(errPkt, iERR, 0x19, 0x04) // 1049: unknown database
	errPkt = append(errPkt, "#42000"...)
	errPkt = append(errPkt, "Unknown database"...)

	mt := &mockTransport{queuedReplies: [][]byte{framePacket(1, errPkt)}, maxReads: 10}
	conn := newTestConnection(mt, true)

	_, err := prepareStatement(context.Background(), conn, "USE nope")
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*ServerError); !ok {
		t.Fatalf("expected *ServerError, got %T: %v", err, err)
	}
}

func TestStatementExecuteWrongNumParams(t *testing.T) {
	stmt := &Statement{conn: newTestConnection(&mockTransport{}, true), numParams: 2}
	_, err := stmt.Execute(context.Background(), Int64Value(1))
	if err != ErrWrongNumParams {
		t.Fatalf("expected ErrWrongNumParams, got %v", err)
	}
}

func TestStatementExecuteAfterClose(t *testing.T) {
	mt := &mockTransport{maxReads: 10}
	stmt := &Statement{conn: newTestConnection(mt, true)}
	if err := stmt.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := stmt.Execute(context.Background()); err != ErrStatementClosed {
		t.Fatalf("expected ErrStatementClosed, got %v", err)
	}
}

func TestStatementCloseIsIdempotent(t *testing.T) {
	mt := &mockTransport{maxReads: 10}
	stmt := &Statement{conn: newTestConnection(mt, true), id: 42}

	if err := stmt.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := stmt.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if mt.writes != 1 {
		t.Fatalf("expected exactly 1 COM_STMT_CLOSE write, got %d", mt.writes)
	}
}

// TestBuildExecutePayloadEncodesNullBitmapAndTypes checks the payload shape
// directly: statement id, cursor flags, iteration count, a null bitmap with
// the NULL argument's bit set, the new-params-bound flag, per-parameter type
// tags, and only the non-NULL values appended.
func TestBuildExecutePayloadEncodesNullBitmapAndTypes(t *testing.T) {
	stmt := &Statement{id: 9}
	args := []Value{NullValue(), Int64Value(5)}

	payload, err := stmt.buildExecutePayload(args)
	if err != nil {
		t.Fatal(err)
	}

	if got := getFixedUint(payload[0:4], 4); got != 9 {
		t.Fatalf("unexpected statement id in payload: %d", got)
	}
	if payload[4] != cursorTypeNoCursor {
		t.Fatalf("unexpected cursor type byte: %#x", payload[4])
	}
	if payload[5] != 1 || payload[6] != 0 || payload[7] != 0 || payload[8] != 0 {
		t.Fatalf("unexpected iteration count bytes: %v", payload[5:9])
	}

	bitmapLen := (len(args) + 7) / 8
	nullBitmap := payload[9 : 9+bitmapLen]
	if nullBitmap[0]&1 == 0 {
		t.Fatalf("expected bit 0 (the NULL arg) set in the null bitmap, got %08b", nullBitmap[0])
	}
	if nullBitmap[0]&2 != 0 {
		t.Fatalf("expected bit 1 (the non-NULL arg) clear in the null bitmap, got %08b", nullBitmap[0])
	}

	pos := 9 + bitmapLen
	if payload[pos] != 1 {
		t.Fatalf("expected the new-params-bound flag, got %d", payload[pos])
	}
	pos++

	typ0, typ1 := payload[pos], payload[pos+1]
	if fieldType(typ0) != fieldTypeNULL {
		t.Fatalf("expected the NULL argument's type tag to be fieldTypeNULL, got %d", typ0)
	}
	_ = typ1
	pos += 2
	typ2 := payload[pos]
	if fieldType(typ2) != fieldTypeLongLong {
		t.Fatalf("expected the int argument's type tag to be fieldTypeLongLong, got %d", typ2)
	}
	pos += 2

	// Only the non-NULL value's 8 encoded bytes should remain.
	if len(payload)-pos != 8 {
		t.Fatalf("expected 8 remaining value bytes, got %d", len(payload)-pos)
	}
}

// TestStatementExecuteReturnsResultSet drives Execute end-to-end against a
// binary-encoded single-row result.
func TestStatementExecuteReturnsResultSet(t *testing.T) {
	prepareOK := buildPrepareOKHeader(1, 1, 1)
	paramDef := intColumnDefinition("?")
	colDef := intColumnDefinition("n")

	seq := uint8(1)
	frame := func(payload []byte) []byte {
		p := framePacket(seq, payload)
		seq++
		return p
	}
	var prepareReply []byte
	prepareReply = append(prepareReply, frame(prepareOK)...)
	prepareReply = append(prepareReply, frame(paramDef)...)
	prepareReply = append(prepareReply, frame(colDef)...)

	execColHeader := appendLengthEncodedInteger(nil, 1)
	execColDef := intColumnDefinition("n")
	rowBuf := []byte{iOK, 0x00} // null bitmap, no NULLs, 1 column -> 1 byte, bit 2 (column 0) clear
	valBuf := make([]byte, 4)
	putFixedUint(valBuf, 5, 4)
	rowBuf = append(rowBuf, valBuf...)
	okTerm := buildOKPacket()
	okTerm[0] = iEOF // OK-as-EOF terminator carries the 0xfe header

	seq2 := uint8(1)
	frame2 := func(payload []byte) []byte {
		p := framePacket(seq2, payload)
		seq2++
		return p
	}
	var execReply []byte
	execReply = append(execReply, frame2(execColHeader)...)
	execReply = append(execReply, frame2(execColDef)...)
	execReply = append(execReply, frame2(rowBuf)...)
	execReply = append(execReply, frame2(okTerm)...)

	mt := &mockTransport{queuedReplies: [][]byte{prepareReply, execReply}, maxReads: 1000}
	conn := newTestConnection(mt, true)

	stmt, err := prepareStatement(context.Background(), conn, "SELECT n FROM t WHERE n = ?")
	if err != nil {
		t.Fatal(err)
	}

	rs, err := stmt.Execute(context.Background(), Int64Value(5))
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
	n, ok := rows[0][0].Int64()
	if !ok || n != 5 {
		t.Fatalf("unexpected row value: %v", rows[0][0])
	}
}
