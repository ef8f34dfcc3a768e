// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package catalog defines the records catsync moves around: items, snapshots
// of item collections, and the storage keys they live under.
package catalog
