// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/store"
)

// Backup is the restorable part of a Document. Any field may be absent.
type Backup struct {
	Products     json.RawMessage `json:"products,omitempty"`
	Categories   json.RawMessage `json:"categories,omitempty"`
	SiteSettings json.RawMessage `json:"siteSettings,omitempty"`
}

// FromDocument converts an export into a restorable backup.
func FromDocument(doc Document) Backup {
	return Backup{
		Products:     doc.Products,
		Categories:   doc.Categories,
		SiteSettings: doc.SiteSettings,
	}
}

// Parse decodes a backup document. Unknown fields are ignored. The document
// must be a JSON object.
func Parse(data []byte) (Backup, error) {
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '{' {
		return Backup{}, fmt.Errorf("failed to parse backup: not a JSON object")
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("failed to parse backup: %w", err)
	}
	return b, nil
}

// Restore writes every present field of b over the matching store key. A
// field is present when it holds a JSON value other than null, false, 0 or
// "". Keys for absent fields are left untouched. Writes are not rolled back
// if a later one fails.
func Restore(ctx context.Context, s store.Store, b Backup) error {
	fields := []struct {
		key string
		raw json.RawMessage
	}{
		{catalog.KeyProducts, b.Products},
		{catalog.KeyCategories, b.Categories},
		{catalog.KeySiteSettings, b.SiteSettings},
	}

	for _, f := range fields {
		if !present(f.raw) {
			log.Debugf("restore: skipping %s", f.key)
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, f.raw); err != nil {
			return fmt.Errorf("malformed %s in backup: %w", f.key, err)
		}
		if err := s.Set(ctx, f.key, buf.String()); err != nil {
			return fmt.Errorf("failed to restore %s: %w", f.key, err)
		}
		log.Infof("restored %s", f.key)
	}
	return nil
}

// present mirrors JavaScript truthiness for a decoded JSON value.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		return len(raw) > 2
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && n != 0
	}
}
