// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import "crypto/sha1"

// nativePasswordPlugin implements mysql_native_password: given a 20-byte
// challenge C and password P, the response is
// SHA1(P) XOR SHA1(C || SHA1(SHA1(P))). An empty password yields an empty
// response.
type nativePasswordPlugin struct{}

func (nativePasswordPlugin) Name() string { return "mysql_native_password" }

func (nativePasswordPlugin) Compute(password string, challenge []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, nil
	}

	h := sha1.New()
	h.Write([]byte(password))
	stage1 := h.Sum(nil)

	h.Reset()
	h.Write(stage1)
	stage2 := h.Sum(nil)

	h.Reset()
	h.Write(challenge)
	h.Write(stage2)
	scramble := h.Sum(nil)

	response := make([]byte, len(scramble))
	for i := range response {
		response[i] = scramble[i] ^ stage1[i]
	}
	return response, nil
}
