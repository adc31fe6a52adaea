// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"bytes"
	"encoding/binary"
	"io"
)

// putUint24 writes n as 3 little-endian bytes into dst[0:3] (used for packet length headers).
func putUint24(dst []byte, n uint32) {
	dst[0] = byte(n)
	dst[1] = byte(n >> 8)
	dst[2] = byte(n >> 16)
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// putFixedUint writes n as width little-endian bytes, width one of
// {1,2,3,4,6,8}.
func putFixedUint(dst []byte, n uint64, width int) {
	for i := 0; i < width; i++ {
		dst[i] = byte(n >> (uint(i) * 8))
	}
}

func getFixedUint(b []byte, width int) uint64 {
	var n uint64
	for i := 0; i < width; i++ {
		n |= uint64(b[i]) << (uint(i) * 8)
	}
	return n
}

// readLengthEncodedInteger decodes a lenenc integer. isNull is true only for
// the 0xfb marker. n is the number of bytes consumed.
func readLengthEncodedInteger(b []byte) (num uint64, isNull bool, n int, err error) {
	if len(b) == 0 {
		return 0, false, 0, io.ErrUnexpectedEOF
	}

	switch b[0] {
	case lenencNull:
		return 0, true, 1, nil

	case lenenc2Byte:
		if len(b) < 3 {
			return 0, false, 0, io.ErrUnexpectedEOF
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), false, 3, nil

	case lenenc3Byte:
		if len(b) < 4 {
			return 0, false, 0, io.ErrUnexpectedEOF
		}
		return uint64(b[1]) | uint64(b[2])<<8 | uint64(b[3])<<16, false, 4, nil

	case lenenc8Byte:
		if len(b) < 9 {
			return 0, false, 0, io.ErrUnexpectedEOF
		}
		return binary.LittleEndian.Uint64(b[1:9]), false, 9, nil

	default:
		return uint64(b[0]), false, 1, nil
	}
}

// appendLengthEncodedInteger appends the lenenc encoding of n to dst.
func appendLengthEncodedInteger(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfb:
		return append(dst, byte(n))
	case n <= 0xffff:
		return append(dst, lenenc2Byte, byte(n), byte(n>>8))
	case n <= 0xffffff:
		return append(dst, lenenc3Byte, byte(n), byte(n>>8), byte(n>>16))
	default:
		buf := [9]byte{lenenc8Byte}
		binary.LittleEndian.PutUint64(buf[1:], n)
		return append(dst, buf[:]...)
	}
}

// readLengthEncodedString reads a lenenc-string: a lenenc integer length
// followed by that many bytes. isNull is true if the length was the NULL
// marker (0xfb); the caller must only treat this as valid where NULL is
// permitted in context.
func readLengthEncodedString(b []byte) (s []byte, isNull bool, n int, err error) {
	num, isNull, n, err := readLengthEncodedInteger(b)
	if err != nil || isNull {
		return nil, isNull, n, err
	}
	if len(b) < n+int(num) {
		return nil, false, n, io.ErrUnexpectedEOF
	}
	return b[n : n+int(num)], false, n + int(num), nil
}

// skipLengthEncodedString returns the number of bytes a lenenc-string at the
// start of b occupies, without allocating its content.
func skipLengthEncodedString(b []byte) (n int, err error) {
	num, isNull, n, err := readLengthEncodedInteger(b)
	if err != nil || isNull {
		return n, err
	}
	if len(b) < n+int(num) {
		return n, io.ErrUnexpectedEOF
	}
	return n + int(num), nil
}

// appendLengthEncodedString appends the lenenc-string encoding of s.
func appendLengthEncodedString(dst []byte, s []byte) []byte {
	dst = appendLengthEncodedInteger(dst, uint64(len(s)))
	return append(dst, s...)
}

// readNullTerminatedString reads bytes up to (not including) the next 0x00,
// returning the number of bytes consumed including the terminator.
func readNullTerminatedString(b []byte) (s []byte, n int, err error) {
	idx := bytes.IndexByte(b, 0x00)
	if idx < 0 {
		return nil, 0, io.ErrUnexpectedEOF
	}
	return b[:idx], idx + 1, nil
}

// appendNullTerminatedString appends s followed by a 0x00 terminator.
func appendNullTerminatedString(dst []byte, s []byte) []byte {
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// restOfPacket returns the "string<EOF>" rest-of-packet encoding: everything
// remaining in b.
func restOfPacket(b []byte) []byte {
	return b
}
