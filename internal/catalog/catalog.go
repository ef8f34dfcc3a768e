// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Storage keys.
const (
	KeySyncConfig   = "syncConfig"
	KeyLastSync     = "lastSync"
	KeyProducts     = "products"
	KeyCategories   = "categoriesData"
	KeySiteSettings = "siteSettings"
)

// TimeFormat is the UTC ISO-8601 layout with milliseconds used for the sync
// marker and export dates.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in UTC using TimeFormat.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// IDField is the field that identifies an item within a snapshot.
const IDField = "id"

// Item is a single record of a collection. Values follow encoding/json's
// decoding of arbitrary JSON.
type Item map[string]any

// Snapshot is the full, ordered state of one collection.
type Snapshot []Item

// ID returns the identifier value, or nil when the item has none.
func (i Item) ID() any {
	return i[IDField]
}

// Name returns the item's name field as a string, or "".
func (i Item) Name() string {
	if s, ok := i["name"].(string); ok {
		return s
	}
	return ""
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	if i == nil {
		return nil
	}
	return cloneValue(map[string]any(i)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case Item:
		return Item(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		s := make([]any, len(t))
		for k, val := range t {
			s[k] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}

// ParseSnapshot decodes a JSON array of objects. Empty input is an empty
// snapshot, matching a key that was never written.
func ParseSnapshot(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Snapshot{}, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Marshal encodes the snapshot as a JSON array. A nil snapshot encodes as [].
func (s Snapshot) Marshal() ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return json.Marshal(s)
}

// Product statuses.
const (
	StatusInStock    = "in_stock"
	StatusOutOfStock = "out_of_stock"
)

// StatusLabel returns the shop-facing label for a product status. Anything
// other than the two stock statuses is shown as made to order.
func StatusLabel(status string) string {
	switch status {
	case StatusInStock:
		return "В наличии"
	case StatusOutOfStock:
		return "Нет в наличии"
	default:
		return "Под заказ"
	}
}
