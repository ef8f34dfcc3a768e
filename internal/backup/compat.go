// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"

	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/store"
)

// RequiredKeys must hold a non-empty value for the store to be usable.
var RequiredKeys = []string{catalog.KeyProducts, catalog.KeyCategories}

// CheckCompatibility reports whether every required key holds a value, and
// which keys do not. Missing keys are a warning, not an error; a key that
// cannot be read counts as missing.
func CheckCompatibility(ctx context.Context, s store.Store) (bool, []string) {
	var missing []string
	for _, key := range RequiredKeys {
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			log.WithError(err).Warnf("failed to read %s", key)
		}
		if err != nil || !ok || v == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		log.Warnf("missing keys: %v", missing)
		return false, missing
	}
	return true, nil
}
