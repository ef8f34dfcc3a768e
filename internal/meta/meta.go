// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"
	"time"

	"github.com/tfctl/catsync/internal/config"
)

// Meta is the per-invocation state shared by every command.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Now is the clock used for timestamps and ages.
	Now         func() time.Time
	StartingDir string
}

// Clock returns m.Now, or time.Now when unset.
func (m Meta) Clock() func() time.Time {
	if m.Now == nil {
		return time.Now
	}
	return m.Now
}
