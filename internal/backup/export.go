// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/store"
)

// Version is written into every exported document.
const Version = "1.0"

// ErrUnknownFormat is returned by Render for formats other than json and csv.
var ErrUnknownFormat = errors.New("unknown export format")

// Document is a full export of the catalog.
type Document struct {
	Products     json.RawMessage `json:"products"`
	Categories   json.RawMessage `json:"categories"`
	SiteSettings json.RawMessage `json:"siteSettings"`
	ExportDate   string          `json:"exportDate"`
	Version      string          `json:"version"`
}

// Export reads the catalog from s. Missing keys export as empty collections
// and empty settings; values that are not valid JSON are an error.
func Export(ctx context.Context, s store.Store, now time.Time) (Document, error) {
	doc := Document{
		ExportDate: catalog.FormatTime(now),
		Version:    Version,
	}

	fields := []struct {
		key  string
		dflt string
		dst  *json.RawMessage
	}{
		{catalog.KeyProducts, "[]", &doc.Products},
		{catalog.KeyCategories, "[]", &doc.Categories},
		{catalog.KeySiteSettings, "{}", &doc.SiteSettings},
	}

	for _, f := range fields {
		v, err := store.GetOr(ctx, s, f.key, f.dflt)
		if err != nil {
			return Document{}, err
		}
		if !json.Valid([]byte(v)) {
			return Document{}, fmt.Errorf("malformed %s: not valid JSON", f.key)
		}
		*f.dst = json.RawMessage(v)
	}

	return doc, nil
}

// Render encodes doc in the requested format: "json" (pretty-printed with
// two-space indent) or "csv" (products only).
func Render(doc Document, format string) ([]byte, error) {
	switch format {
	case "json", "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode export: %w", err)
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	case "csv":
		return []byte(ConvertToCSV(doc.Products)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
