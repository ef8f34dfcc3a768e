// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws contains the S3 helpers used to keep catalog backups in a
// bucket (s3://bucket/key locations).
package aws
