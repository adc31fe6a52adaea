// gomy - a MySQL/MariaDB wire-protocol client library
//
// Copyright 2026 The wiremysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package wiremysql

import "sync"

// AuthPlugin is the authentication collaborator contract: a name and a
// compute function mapping (password, challenge) to the wire-ready response
// bytes. The core ships mysql_native_password and client_ed25519;
// additional plugins register through this interface.
type AuthPlugin interface {
	// Name returns the plugin name as sent by the server in the handshake
	// or an auth-switch request (e.g. "mysql_native_password").
	Name() string

	// Compute returns the authentication response for the given password
	// and challenge bytes. An empty password must yield an empty response
	// for mysql_native_password; other plugins may differ.
	Compute(password string, challenge []byte) ([]byte, error)
}

// pluginRegistry is a name -> AuthPlugin lookup.
type pluginRegistry struct {
	mu      sync.RWMutex
	plugins map[string]AuthPlugin
}

var globalAuthPlugins = &pluginRegistry{plugins: make(map[string]AuthPlugin)}

// RegisterAuthPlugin adds plugin to the global registry, keyed by its Name().
// Registering a second plugin under the same name replaces the first.
func RegisterAuthPlugin(plugin AuthPlugin) {
	globalAuthPlugins.mu.Lock()
	defer globalAuthPlugins.mu.Unlock()
	globalAuthPlugins.plugins[plugin.Name()] = plugin
}

func lookupAuthPlugin(name string) (AuthPlugin, bool) {
	globalAuthPlugins.mu.RLock()
	defer globalAuthPlugins.mu.RUnlock()
	p, ok := globalAuthPlugins.plugins[name]
	return p, ok
}

func init() {
	RegisterAuthPlugin(nativePasswordPlugin{})
	RegisterAuthPlugin(ed25519Plugin{})
}
