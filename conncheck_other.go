//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd && !solaris && !illumos
//
// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import "net"

// connCheck is a no-op stand-in on platforms without a cheap non-blocking
// poll primitive; Connection.Alive degrades to "assume alive" there.
func connCheck(net.Conn) error { return nil }
