// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package syncer

import "time"

// DefaultInterval is the auto-sync interval in milliseconds.
const DefaultInterval = 5 * 60 * 1000

// Config is the persisted sync configuration.
type Config struct {
	AutoSync      bool   `json:"autoSync"`
	SyncInterval  int    `json:"syncInterval"`
	NotifyChanges bool   `json:"notifyChanges"`
	LastSync      string `json:"lastSync,omitempty"`
}

// DefaultConfig returns auto-sync every five minutes with notifications on.
func DefaultConfig() Config {
	return Config{
		AutoSync:      true,
		SyncInterval:  DefaultInterval,
		NotifyChanges: true,
	}
}

// Interval returns SyncInterval as a duration, falling back to the default
// for non-positive values.
func (c Config) Interval() time.Duration {
	if c.SyncInterval <= 0 {
		return DefaultInterval * time.Millisecond
	}
	return time.Duration(c.SyncInterval) * time.Millisecond
}
