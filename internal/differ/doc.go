// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ classifies the items of two collection snapshots as added,
// updated or removed, and renders the differences.
package differ
