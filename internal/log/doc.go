// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package log is a thin wrapper over apex/log that installs catsync's
// single-line handler and exposes level-named helpers.
package log
