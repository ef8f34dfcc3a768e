// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for catsync's user
// configuration. The configuration is a YAML document located in the user's
// configuration directory, typically:
//   - Linux: $XDG_CONFIG_HOME/catsync.yaml or $HOME/.config/catsync.yaml
//   - macOS: $HOME/Library/Application Support/catsync.yaml
//   - Windows: %APPDATA%/catsync.yaml
//
// CATSYNC_CFG_FILE overrides the location. The runtime sync settings
// (autoSync, syncInterval, notifyChanges) live in the catalog store, not here;
// this file only seeds defaults and CLI flag values.
package config
