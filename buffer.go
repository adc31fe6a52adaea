// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"io"

	"github.com/go-wiremysql/wiremysql/internal/atomicflag"
)

const defaultBufSize = 4096

// readBuffer is a read buffer similar to bufio.Reader, specialized for the
// packet channel's need to hand back slices that alias the buffer directly
// instead of copying every byte read off the wire. The generation counter
// lets ResultSet detect a stale borrowed Row dynamically.
type readBuffer struct {
	buf        []byte
	rd         io.Reader
	idx        int
	length     int
	generation atomicflag.Counter
}

func newReadBuffer(rd io.Reader) *readBuffer {
	return &readBuffer{
		buf: make([]byte, defaultBufSize),
		rd:  rd,
	}
}

// fill reads into the buffer until at least need bytes are available.
func (b *readBuffer) fill(need int) error {
	// move existing data to the beginning
	if b.length > 0 && b.idx > 0 {
		copy(b.buf[0:b.length], b.buf[b.idx:b.idx+b.length])
	}

	if need > len(b.buf) {
		newBuf := make([]byte, need)
		copy(newBuf, b.buf[:b.length])
		b.buf = newBuf
	}

	b.idx = 0

	for b.length < need {
		n, err := b.rd.Read(b.buf[b.length:])
		b.length += n
		if err != nil {
			return err
		}
	}
	return nil
}

// readNext returns the next need bytes from the buffer. The returned slice
// aliases the buffer's backing array and is only valid until the buffer's
// generation counter next advances (i.e. until the next readNext call).
func (b *readBuffer) readNext(need int) ([]byte, error) {
	if b.length < need {
		if err := b.fill(need); err != nil {
			return nil, err
		}
	}
	p := b.buf[b.idx : b.idx+need]
	b.idx += need
	b.length -= need
	b.generation.Next()
	return p, nil
}
