package wiremysql

import (
	"bytes"
	"testing"
)

func TestUint24RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 255, 256, 0xabcdef, maxPacketSize}
	for _, n := range cases {
		buf := make([]byte, 3)
		putUint24(buf, n)
		if got := getUint24(buf); got != n {
			t.Errorf("putUint24/getUint24(%d): got %d", n, got)
		}
	}
}

func TestFixedUintRoundTrip(t *testing.T) {
	cases := []struct {
		width int
		n     uint64
	}{
		{1, 0xff},
		{2, 0xabcd},
		{4, 0xdeadbeef},
		{8, 0x0102030405060708},
	}
	for _, c := range cases {
		buf := make([]byte, c.width)
		putFixedUint(buf, c.n, c.width)
		if got := getFixedUint(buf, c.width); got != c.n {
			t.Errorf("width %d: putFixedUint/getFixedUint(%#x): got %#x", c.width, c.n, got)
		}
	}
}

func TestLengthEncodedIntegerRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 250, 251, 0xfa, 0xffff, 0x10000, 0xffffff, 0x1000000, 1 << 40}
	for _, n := range cases {
		buf := appendLengthEncodedInteger(nil, n)
		got, isNull, consumed, err := readLengthEncodedInteger(buf)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if isNull {
			t.Fatalf("n=%d: unexpectedly decoded as NULL", n)
		}
		if got != n {
			t.Errorf("n=%d: round-tripped to %d", n, got)
		}
		if consumed != len(buf) {
			t.Errorf("n=%d: consumed %d, want %d", n, consumed, len(buf))
		}
	}
}

func TestLengthEncodedIntegerNull(t *testing.T) {
	_, isNull, n, err := readLengthEncodedInteger([]byte{lenencNull})
	if err != nil {
		t.Fatal(err)
	}
	if !isNull || n != 1 {
		t.Fatalf("expected NULL marker consuming 1 byte, got isNull=%v n=%d", isNull, n)
	}
}

func TestLengthEncodedIntegerTruncated(t *testing.T) {
	// lenenc3Byte header claims 3 more bytes follow; only 1 is present.
	_, _, _, err := readLengthEncodedInteger([]byte{lenenc3Byte, 0x01})
	if err == nil {
		t.Fatal("expected an error for a truncated lenenc integer")
	}
}

func TestLengthEncodedStringRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("short"),
		bytes.Repeat([]byte("x"), 300), // forces the 2-byte lenenc prefix
	}
	for _, s := range cases {
		buf := appendLengthEncodedString(nil, s)
		got, isNull, n, err := readLengthEncodedString(buf)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if isNull {
			t.Fatalf("%q: unexpectedly NULL", s)
		}
		if !bytes.Equal(got, s) {
			t.Errorf("%q: round-tripped to %q", s, got)
		}
		if n != len(buf) {
			t.Errorf("%q: consumed %d, want %d", s, n, len(buf))
		}
	}
}

func TestNullTerminatedStringRoundTrip(t *testing.T) {
	buf := appendNullTerminatedString(nil, []byte("mysql_native_password"))
	buf = append(buf, 0xaa) // trailing byte after the terminator must be untouched

	s, n, err := readNullTerminatedString(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(s) != "mysql_native_password" {
		t.Errorf("got %q", s)
	}
	if n != len("mysql_native_password")+1 {
		t.Errorf("consumed %d bytes, want %d", n, len("mysql_native_password")+1)
	}
}

func TestNullTerminatedStringMissingTerminator(t *testing.T) {
	_, _, err := readNullTerminatedString([]byte("no terminator here"))
	if err == nil {
		t.Fatal("expected an error when no NUL terminator is present")
	}
}
