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
	"regexp"
	"strings"
	"time"
)

// Config carries the connect-time parameters: user, password, database,
// collation, and extra capability flags. AllowNativePasswords is parsed from
// and written to a DSN only; the handshake does not consult it and uses
// whichever registered auth plugin the server names.
type Config struct {
	User     string
	Passwd   string
	Net      string // "tcp" or "unix"
	Addr     string
	DBName   string

	Collation         uint8
	CapabilitiesExtra capabilityFlag
	AllowNativePasswords bool

	Timeout time.Duration

	Logger Logger
}

// dsnPattern matches a DSN of the form:
// [user[:password]@][net[(addr)]]/dbname[?param1=value1&...]
var dsnPattern = regexp.MustCompile(
	`^(?:(?P<user>.*?)(?::(?P<passwd>.*))?@)?` +
		`(?:(?P<net>[^\(]*)(?:\((?P<addr>[^\)]*)\))?)?` +
		`\/(?P<dbname>.*?)` +
		`(?:\?(?P<params>[^\?]*))?$`)

// ParseDSN parses a DSN of the form
// "user:password@net(addr)/dbname?param=value" into a Config. Unset net
// defaults to "tcp", unset addr to "127.0.0.1:3306".
func ParseDSN(dsn string) (*Config, error) {
	matches := dsnPattern.FindStringSubmatch(dsn)
	if matches == nil {
		return nil, fmt.Errorf("wiremysql: invalid DSN %q", dsn)
	}
	names := dsnPattern.SubexpNames()

	cfg := &Config{
		Collation:            defaultCollation,
		AllowNativePasswords: true,
	}

	for i, match := range matches {
		switch names[i] {
		case "user":
			cfg.User = match
		case "passwd":
			cfg.Passwd = match
		case "net":
			cfg.Net = match
		case "addr":
			cfg.Addr = match
		case "dbname":
			cfg.DBName = match
		case "params":
			if err := applyDSNParams(cfg, match); err != nil {
				return nil, err
			}
		}
	}

	if cfg.Net == "" {
		cfg.Net = "tcp"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:3306"
	}

	return cfg, nil
}

func applyDSNParams(cfg *Config, raw string) error {
	for _, kv := range strings.Split(raw, "&") {
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "timeout":
			d, err := time.ParseDuration(parts[1])
			if err != nil {
				return fmt.Errorf("wiremysql: invalid timeout param: %w", err)
			}
			cfg.Timeout = d
		case "allowNativePasswords":
			cfg.AllowNativePasswords = parts[1] != "false"
		}
	}
	return nil
}

// FormatDSN is the inverse of ParseDSN.
func (c *Config) FormatDSN() string {
	var b strings.Builder
	if c.User != "" {
		b.WriteString(c.User)
		if c.Passwd != "" {
			b.WriteByte(':')
			b.WriteString(c.Passwd)
		}
		b.WriteByte('@')
	}
	if c.Net != "" {
		b.WriteString(c.Net)
		if c.Addr != "" {
			b.WriteByte('(')
			b.WriteString(c.Addr)
			b.WriteByte(')')
		}
	}
	b.WriteByte('/')
	b.WriteString(c.DBName)

	var params []string
	if c.Timeout > 0 {
		params = append(params, "timeout="+c.Timeout.String())
	}
	if !c.AllowNativePasswords {
		params = append(params, "allowNativePasswords=false")
	}
	if len(params) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}

func (c *Config) collation() uint8 {
	if c.Collation == 0 {
		return defaultCollation
	}
	return c.Collation
}

func (c *Config) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return defaultLogger()
}
