// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package syncer keeps the catalog's sync marker current and reacts to
// catalog changes. A Manager owns the sync configuration stored under
// syncConfig, advances lastSync on a fixed interval, turns store change events
// into notifications and an optional reload, and fronts the backup package
// with user-facing notifications.
package syncer
