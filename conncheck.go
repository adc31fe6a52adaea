//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd || solaris || illumos
//
// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

var errUnexpectedEvent = errors.New("wiremysql: unexpected poll event on an idle connection")

// connCheck polls the raw file descriptor for POLLIN/POLLERR without
// blocking, the cheapest way to notice the peer has closed the socket
// between commands. Used only by Connection.Alive, never mid-result-set.
func connCheck(conn net.Conn) error {
	sysConn, ok := conn.(syscall.Conn)
	if !ok {
		return nil
	}
	rawConn, err := sysConn.SyscallConn()
	if err != nil {
		return err
	}

	var pollErr error
	err = rawConn.Control(func(fd uintptr) {
		fds := []unix.PollFd{
			{Fd: int32(fd), Events: unix.POLLIN | unix.POLLERR},
		}
		n, err := unix.Poll(fds, 0)
		if err != nil {
			pollErr = fmt.Errorf("poll: %w", err)
			return
		}
		if n > 0 {
			pollErr = errUnexpectedEvent
		}
	})
	if err != nil {
		return err
	}
	return pollErr
}

// Alive reports whether the underlying socket still looks connected,
// without issuing any protocol traffic. A false positive (reporting alive
// when the peer has in fact gone away) is possible under normal TCP
// semantics; Ping is the authoritative check.
func (c *Connection) Alive() bool {
	if c.closed.IsSet() || c.ch.checkPoisoned() != nil {
		return false
	}
	nt, ok := c.ch.transport.(*netTransport)
	if !ok {
		return true
	}
	return connCheck(nt.conn) == nil
}
