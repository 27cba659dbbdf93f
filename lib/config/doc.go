// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the kiosk
// server.
//
// Configuration is loaded from a single file specified by either the
// KIOSK_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// Variable expansion is performed on the proxy prefix and manifest
// path after loading: ${HOME}, ${VAR}, and ${VAR:-default} patterns
// are expanded, so a JupyterHub deployment can write
// "${JUPYTERHUB_SERVICE_PREFIX}proxy/{port}" as its proxy prefix. No
// other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Server and Resources sections
//   - [Default] -- a Config that serves loopback traffic on a free port
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other kiosk packages.
package config
