// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
)

// ed25519Plugin implements client_ed25519, MariaDB's Ed25519-based
// authentication plugin, registered through the same AuthPlugin seam as
// mysql_native_password. Follows
// https://github.com/MariaDB/server/.../plugin/auth_ed25519/ref10/sign.c.
type ed25519Plugin struct{}

func (ed25519Plugin) Name() string { return "client_ed25519" }

func (ed25519Plugin) Compute(password string, challenge []byte) ([]byte, error) {
	h := sha512.Sum512([]byte(password))

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, err
	}
	a := (&edwards25519.Point{}).ScalarBaseMult(s)

	mh := sha512.New()
	mh.Write(h[32:])
	mh.Write(challenge)
	messageDigest := mh.Sum(nil)
	r, err := edwards25519.NewScalar().SetUniformBytes(messageDigest)
	if err != nil {
		return nil, err
	}

	rPoint := (&edwards25519.Point{}).ScalarBaseMult(r)

	kh := sha512.New()
	kh.Write(rPoint.Bytes())
	kh.Write(a.Bytes())
	kh.Write(challenge)
	hramDigest := kh.Sum(nil)
	k, err := edwards25519.NewScalar().SetUniformBytes(hramDigest)
	if err != nil {
		return nil, err
	}

	sScalar := k.MultiplyAdd(k, s, r)

	return append(rPoint.Bytes(), sScalar.Bytes()...), nil
}
