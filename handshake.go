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
	"fmt"
)

// session holds everything the handshake negotiates, consumed by the
// query/statement/result-set engines afterward.
type session struct {
	serverVersion string
	threadID      uint32
	capabilities  capabilityFlag
	charset       byte
}

func (s *session) deprecateEOF() bool {
	return s.capabilities&clientDeprecateEOF != 0
}

// handshakeInit is the parsed protocol-v10 handshake packet.
type handshakeInit struct {
	serverVersion  string
	threadID       uint32
	capabilities   capabilityFlag
	charset        byte
	statusFlags    uint16
	authPluginData []byte
	authPluginName string
}

// readInitPacket parses the server's initial handshake packet, including
// the capability-flags-upper, auth-plugin-data-length, and auth-plugin-name
// fields.
func readInitPacket(data []byte) (*handshakeInit, error) {
	if len(data) < 1 {
		return nil, newProtocolError("handshake: empty packet", ErrMalformedPacket)
	}
	if data[0] < minProtocolVersion {
		return nil, fmt.Errorf("%w: protocol version %d is below the minimum supported %d",
			ErrHandshakeIncompatible, data[0], minProtocolVersion)
	}

	pos := 1
	serverVersion, n, err := readNullTerminatedString(data[pos:])
	if err != nil {
		return nil, newProtocolError("handshake: server version", err)
	}
	pos += n

	if len(data) < pos+4+8+1+2+1+2+2+1+10 {
		return nil, newProtocolError("handshake: truncated fixed block", ErrMalformedPacket)
	}

	threadID := uint32(getFixedUint(data[pos:pos+4], 4))
	pos += 4

	authData := make([]byte, 0, 20)
	authData = append(authData, data[pos:pos+8]...)
	pos += 8

	pos += 1 // filler

	capLower := getUint16(data[pos : pos+2])
	pos += 2

	charset := data[pos]
	pos++

	statusFlags := getUint16(data[pos : pos+2])
	pos += 2

	capUpper := getUint16(data[pos : pos+2])
	pos += 2
	capabilities := capabilityFlag(uint32(capLower) | uint32(capUpper)<<16)

	authPluginDataLen := int(data[pos])
	pos++

	pos += 10 // reserved

	part2Len := authPluginDataLen - 8
	if part2Len < 13 {
		part2Len = 13
	}
	if len(data) < pos+part2Len {
		return nil, newProtocolError("handshake: truncated auth-plugin-data part 2", ErrMalformedPacket)
	}
	part2 := data[pos : pos+part2Len]
	// trailing 0x00 stripped
	for len(part2) > 0 && part2[len(part2)-1] == 0 {
		part2 = part2[:len(part2)-1]
	}
	authData = append(authData, part2...)
	pos += part2Len

	pluginName := ""
	if capabilities&clientPluginAuth != 0 && len(data) > pos {
		name, _, err := readNullTerminatedString(data[pos:])
		if err == nil {
			pluginName = string(name)
		} else {
			// some servers omit the terminator on the last field
			pluginName = string(data[pos:])
		}
	}

	return &handshakeInit{
		serverVersion:  string(serverVersion),
		threadID:       threadID,
		capabilities:   capabilities,
		charset:        charset,
		statusFlags:    statusFlags,
		authPluginData: authData,
		authPluginName: pluginName,
	}, nil
}

// negotiateCapabilities computes the client capability set: the
// intersection of the server's flags and this client's fixed set, plus
// CONNECT_WITH_DB when a database was configured.
func negotiateCapabilities(cfg *Config, server capabilityFlag) (capabilityFlag, error) {
	if server&clientProtocol41 == 0 || server&clientSecureConn == 0 {
		return 0, ErrHandshakeIncompatible
	}

	caps := fixedClientCapabilities & server
	caps |= cfg.CapabilitiesExtra
	if cfg.DBName != "" {
		caps |= clientConnectWithDB
	}
	// LOCAL_FILES is always off.
	caps &^= clientLocalFiles

	return caps, nil
}

// computeAuthResponse selects the named plugin and computes its response. A
// challenge shorter than 20 bytes is rejected (truncation would lose
// entropy); longer challenges are truncated to 20 bytes before hashing.
func computeAuthResponse(pluginName string, password string, challenge []byte) ([]byte, string, error) {
	plugin, ok := lookupAuthPlugin(pluginName)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrAuthPluginUnsupported, pluginName)
	}

	c := challenge
	if len(c) > 20 {
		c = c[:20]
	} else if len(c) < 20 {
		return nil, "", fmt.Errorf("%w: plugin %q challenge too short (%d bytes)", ErrAuthPluginUnsupported, pluginName, len(c))
	}

	resp, err := plugin.Compute(password, c)
	if err != nil {
		return nil, "", err
	}
	return resp, plugin.Name(), nil
}

// buildHandshakeResponse encodes the client's handshake response packet.
func buildHandshakeResponse(cfg *Config, caps capabilityFlag, authResponse []byte, pluginName string) []byte {
	data := make([]byte, 0, 64+len(cfg.User)+len(authResponse)+len(cfg.DBName))

	capBuf := make([]byte, 4)
	putFixedUint(capBuf, uint64(caps), 4)
	data = append(data, capBuf...)

	maxPktBuf := make([]byte, 4)
	putFixedUint(maxPktBuf, defaultMaxPacketSize, 4)
	data = append(data, maxPktBuf...)

	data = append(data, cfg.collation())
	data = append(data, make([]byte, 23)...)

	data = appendNullTerminatedString(data, []byte(cfg.User))

	if caps&clientPluginAuthLenencClientData != 0 {
		data = appendLengthEncodedString(data, authResponse)
	} else {
		data = append(data, byte(len(authResponse)))
		data = append(data, authResponse...)
	}

	if caps&clientConnectWithDB != 0 {
		data = appendNullTerminatedString(data, []byte(cfg.DBName))
	}

	if caps&clientPluginAuth != 0 {
		data = appendNullTerminatedString(data, []byte(pluginName))
	}

	return data
}

// performHandshake drives the full opening sequence over an
// already-connected packet channel, returning the negotiated session.
func performHandshake(ctx context.Context, ch *packetChannel, cfg *Config) (*session, error) {
	ch.resetSequence()

	raw, err := ch.readPacket(ctx)
	if err != nil {
		return nil, err
	}
	init, err := readInitPacket(raw)
	if err != nil {
		return nil, err
	}

	caps, err := negotiateCapabilities(cfg, init.capabilities)
	if err != nil {
		return nil, err
	}

	pluginName := init.authPluginName
	if pluginName == "" {
		pluginName = "mysql_native_password"
	}

	authResponse, usedPlugin, err := computeAuthResponse(pluginName, cfg.Passwd, init.authPluginData)
	if err != nil {
		return nil, err
	}

	respPacket := buildHandshakeResponse(cfg, caps, authResponse, usedPlugin)
	if err := ch.writePacket(ctx, respPacket); err != nil {
		return nil, err
	}

	if err := readAuthResult(ctx, ch, cfg, init.authPluginData); err != nil {
		return nil, err
	}

	return &session{
		serverVersion: init.serverVersion,
		threadID:      init.threadID,
		capabilities:  caps,
		charset:       cfg.collation(),
	}, nil
}

// readAuthResult processes the server's response to the handshake response
// packet: OK, ERR, or an auth-switch request, looping until a terminal OK
// or ERR is reached.
func readAuthResult(ctx context.Context, ch *packetChannel, cfg *Config, initialChallenge []byte) error {
	for {
		data, err := ch.readPacket(ctx)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return newProtocolError("auth result", ErrMalformedPacket)
		}

		switch data[0] {
		case iOK:
			_, err := parseOKPacket(data, false)
			return err

		case iERR:
			return parseErrPacket(data)

		case iEOF:
			// AuthSwitchRequest: status(1) + plugin-name(null-term) + auth-data(EOF-string)
			pluginName, n, err := readNullTerminatedString(data[1:])
			if err != nil {
				return newProtocolError("auth switch: plugin name", err)
			}
			challenge := restOfPacket(data[1+n:])
			// trailing 0x00 some servers append is harmless to strip
			for len(challenge) > 0 && challenge[len(challenge)-1] == 0 {
				challenge = challenge[:len(challenge)-1]
			}

			resp, _, err := computeAuthResponse(string(pluginName), cfg.Passwd, challenge)
			if err != nil {
				return err
			}
			if err := ch.writePacket(ctx, resp); err != nil {
				return err
			}
			// loop to read the result of the switched auth

		default:
			return newProtocolError("auth result: unexpected header", ErrMalformedPacket)
		}
	}
}
