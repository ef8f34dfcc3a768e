// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package store is the string-keyed storage catsync keeps the catalog in.
//
// Three backends are available and are selected with a spec string:
//
//   - "memory:" keeps values in process; useful for tests and dry runs.
//   - "file:<dir>" writes one file per key beneath dir. This is the default
//     and the only backend that reports changes made by other processes.
//   - "sqlite:<path>" keeps a key/value table in a SQLite database.
//
// Backends that can observe changes also implement Watcher.
package store
