// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"github.com/sirupsen/logrus"
)

// Logger is the logging collaborator a Connection reports diagnostics to,
// an interface so callers can plug in their own structured sink.
type Logger interface {
	Print(v ...interface{})
}

// logrusLogger adapts a *logrus.Logger to the Logger interface. It is the
// default used by Connect when Config.Logger is nil.
type logrusLogger struct {
	entry *logrus.Entry
}

func (l logrusLogger) Print(v ...interface{}) {
	l.entry.Error(v...)
}

// defaultLogger returns a logrus-backed logger writing to stderr, tagged
// with the "wiremysql" component field.
func defaultLogger() Logger {
	log := logrus.New()
	return logrusLogger{entry: log.WithField("component", "wiremysql")}
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Print(v ...interface{}) {}
