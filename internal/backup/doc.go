// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package backup exports the catalog to JSON or CSV, restores it from a
// backup document, and manages where backups live: local files, an archive
// directory of timestamped copies, stdin/stdout, or S3. Backups may be sealed
// with a passphrase.
package backup
