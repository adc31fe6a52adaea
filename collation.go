// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// legacyCollationEncodings maps the handful of non-UTF8 collation ids this
// client can optionally decode into a native Go string. The core codec in
// value.go never consults this table; it backs only the opt-in
// Value.DecodeText helper below.
var legacyCollationEncodings = map[uint16]encoding.Encoding{
	5:  charmap.ISO8859_1,     // latin1_swedish_ci
	8:  charmap.ISO8859_1,     // latin1_general_ci
	41: charmap.Windows1252,   // cp1250_general_ci's Windows sibling
	28: simplifiedchinese.GBK, // gbk_chinese_ci
}

// DecodeText decodes a String-kind Value's bytes using the legacy encoding
// registered for characterSet, falling back to treating the bytes as UTF-8
// when no legacy mapping is registered (which covers utf8/utf8mb4, the
// overwhelming majority of modern collations). Binary/Blob values and
// non-String kinds are returned as an error: this helper only ever touches
// the opaque declared-collation bytes of a string column, never numeric or
// temporal variants.
func (v Value) DecodeText(characterSet uint16) (string, error) {
	if v.Kind != KindString {
		return "", newProtocolError("DecodeText", ErrMalformedPacket)
	}
	enc, ok := legacyCollationEncodings[characterSet]
	if !ok {
		return string(v.raw), nil
	}
	out, err := enc.NewDecoder().Bytes(v.raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
