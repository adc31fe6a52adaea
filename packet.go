// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"context"
	"io"
	"time"

	"github.com/go-wiremysql/wiremysql/internal/atomicflag"
)

// packetHeaderSize is the 4-byte frame header: 3 bytes little-endian
// length, 1 byte sequence number.
const packetHeaderSize = 4

// packetChannel frames outgoing payloads and reassembles inbound ones. It
// owns the read buffer and the per-command-cycle sequence number; once a
// ProtocolError or TransportError occurs the channel is permanently
// poisoned.
type packetChannel struct {
	transport Transport
	rbuf      *readBuffer
	seq       uint8

	poisoned atomicflag.Bool
	lastErr  atomicflag.Error
}

func newPacketChannel(t Transport) *packetChannel {
	return &packetChannel{
		transport: t,
		rbuf:      newReadBuffer(readerFunc(t.Read)),
	}
}

// readerFunc adapts a Read method value to io.Reader.
type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

// resetSequence begins a new client-initiated command cycle.
func (c *packetChannel) resetSequence() {
	c.seq = 0
}

func (c *packetChannel) poison(err error) error {
	c.poisoned.Set(true)
	c.lastErr.Set(err)
	return err
}

func (c *packetChannel) checkPoisoned() error {
	if c.poisoned.IsSet() {
		return ErrConnectionPoisoned
	}
	return nil
}

func (c *packetChannel) applyDeadline(ctx context.Context) {
	ds, ok := c.transport.(deadlineSetter)
	if !ok {
		return
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = ds.SetDeadline(dl)
	} else {
		_ = ds.SetDeadline(time.Time{})
	}
}

// readPacket reads one logical packet cycle: a sequence of frames sharing
// consecutive sequence numbers, where all but the last carry exactly
// 0xFFFFFF bytes of payload, concatenated into a single payload. The
// returned slice aliases the channel's read buffer (the "borrowed row"
// contract); it is valid only until the next read on this channel.
func (c *packetChannel) readPacket(ctx context.Context) ([]byte, error) {
	if err := c.checkPoisoned(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.applyDeadline(ctx)

	var payload []byte
	for {
		header, err := c.rbuf.readNext(packetHeaderSize)
		if err != nil {
			return nil, c.poison(newTransportError("read packet header", err))
		}

		length := getUint24(header)
		seqByte := header[3]

		if seqByte != c.seq {
			return nil, c.poison(newProtocolError("sequence mismatch", ErrSequenceMismatch))
		}
		c.seq++

		if length == 0 {
			// Zero-length frame: either the sole frame of an empty packet,
			// or the trailing continuation frame of an exact multiple of
			// 0xFFFFFF bytes.
			return payload, nil
		}

		body, err := c.rbuf.readNext(int(length))
		if err != nil {
			return nil, c.poison(newTransportError("read packet body", err))
		}

		if payload == nil && length < maxPacketSize {
			// Common case: single-frame packet, return the buffer-aliased
			// slice directly with no copy.
			return body, nil
		}

		// Multi-frame reassembly requires an owned copy since subsequent
		// reads will overwrite the buffer.
		payload = append(payload, body...)

		if length < maxPacketSize {
			return payload, nil
		}
		// length == maxPacketSize: a following frame (possibly empty) is
		// mandatory; loop again.
	}
}

// writePacket frames data into one or more chunks of at most maxPacketSize
// bytes, writing each with an incrementing sequence number. A payload whose
// length is a nonzero multiple of maxPacketSize additionally emits a
// trailing zero-length frame.
func (c *packetChannel) writePacket(ctx context.Context, data []byte) error {
	if err := c.checkPoisoned(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.applyDeadline(ctx)

	remaining := data
	for {
		chunk := remaining
		if len(chunk) > maxPacketSize {
			chunk = remaining[:maxPacketSize]
		}

		frame := make([]byte, packetHeaderSize+len(chunk))
		putUint24(frame, uint32(len(chunk)))
		frame[3] = c.seq
		copy(frame[packetHeaderSize:], chunk)

		if err := c.writeAll(frame); err != nil {
			return c.poison(newTransportError("write packet", err))
		}
		c.seq++
		remaining = remaining[len(chunk):]

		if len(chunk) < maxPacketSize {
			return nil
		}
		// len(chunk) == maxPacketSize: a following frame is mandatory,
		// even if remaining is now empty.
	}
}

func (c *packetChannel) writeAll(p []byte) error {
	for len(p) > 0 {
		n, err := c.transport.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

func (c *packetChannel) close() error {
	return c.transport.Close()
}

// generation returns the read buffer's current generation counter, used by
// ResultSet to detect when a borrowed Row has been invalidated by a later
// read on the same channel.
func (c *packetChannel) generation() uint64 {
	return c.rbuf.generation.Load()
}
