// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/catsync/internal/catalog"
)

// Result classifies the items of two snapshots. Unchanged items are not
// reported. Items are copies and never alias the inputs.
type Result struct {
	Added      catalog.Snapshot `json:"added" yaml:"added"`
	Updated    catalog.Snapshot `json:"updated" yaml:"updated"`
	Removed    catalog.Snapshot `json:"removed" yaml:"removed"`
	Duplicates []string         `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// Empty reports whether the snapshots were equivalent.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Updated) == 0 && len(r.Removed) == 0
}

// Diff compares two snapshots of the same collection.
//
// Items are matched by identifier. When an identifier occurs more than once
// in a snapshot the last occurrence wins and is the only one reported; such
// identifiers are listed in Result.Duplicates. Added and Updated follow the
// order of newSnap, Removed follows the order of oldSnap.
func Diff(oldSnap, newSnap catalog.Snapshot) Result {
	res := Result{
		Added:   catalog.Snapshot{},
		Updated: catalog.Snapshot{},
		Removed: catalog.Snapshot{},
	}

	oldIdx := buildIndex(oldSnap)
	newIdx := buildIndex(newSnap)
	res.Duplicates = mergeDuplicates(oldIdx.dups, newIdx.dups)
	if len(res.Duplicates) > 0 {
		log.Warnf("duplicate identifiers, last occurrence wins: %v", res.Duplicates)
	}

	jd := gojsondiff.New()

	for i, item := range newSnap {
		key := newIdx.keys[i]
		if newIdx.last[key] != i {
			continue
		}
		oi, found := oldIdx.last[key]
		if !found {
			res.Added = append(res.Added, item.Clone())
			continue
		}
		if !Equal(jd, oldSnap[oi], item) {
			res.Updated = append(res.Updated, item.Clone())
		}
	}

	for i, item := range oldSnap {
		key := oldIdx.keys[i]
		if oldIdx.last[key] != i {
			continue
		}
		if _, found := newIdx.last[key]; !found {
			res.Removed = append(res.Removed, item.Clone())
		}
	}

	log.Debugf("diff: old=%d new=%d added=%d updated=%d removed=%d",
		len(oldSnap), len(newSnap), len(res.Added), len(res.Updated), len(res.Removed))

	return res
}

// DiffJSON parses two JSON arrays and diffs them.
func DiffJSON(oldDoc, newDoc []byte) (Result, error) {
	oldSnap, err := catalog.ParseSnapshot(oldDoc)
	if err != nil {
		return Result{}, fmt.Errorf("old: %w", err)
	}
	newSnap, err := catalog.ParseSnapshot(newDoc)
	if err != nil {
		return Result{}, fmt.Errorf("new: %w", err)
	}
	return Diff(oldSnap, newSnap), nil
}

// Key returns the identifier key of an item: the JSON text of its id, so 1
// and 1.0 match while 1 and "1" do not. Items without an id share the key
// "null".
func Key(item catalog.Item) string {
	id := item.ID()
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Sprintf("%v", id)
	}
	return string(b)
}

// Equal reports whether two items are structurally equal. Object field order
// and numeric representation are ignored, array order is not. A nil differ
// gets a fresh one.
func Equal(jd *gojsondiff.Differ, a, b catalog.Item) bool {
	na, errA := normalize(a)
	nb, errB := normalize(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	if jd == nil {
		jd = gojsondiff.New()
	}
	return !jd.CompareObjects(na, nb).Modified()
}

// Detail renders the field-level changes between two versions of an item.
func Detail(oldItem, newItem catalog.Item, coloring bool) (string, error) {
	na, err := normalize(oldItem)
	if err != nil {
		return "", fmt.Errorf("failed to normalize old item: %w", err)
	}
	nb, err := normalize(newItem)
	if err != nil {
		return "", fmt.Errorf("failed to normalize new item: %w", err)
	}

	delta := gojsondiff.New().CompareObjects(na, nb)
	if !delta.Modified() {
		return "", nil
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       coloring,
	}
	return formatter.NewAsciiFormatter(na, config).Format(delta)
}

// Summary renders the counts as "+added ~updated -removed".
func Summary(r Result) string {
	return fmt.Sprintf("+%d ~%d -%d", len(r.Added), len(r.Updated), len(r.Removed))
}

// Rows flattens a result into one row per reported item, suitable for the
// output package.
func Rows(r Result) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(r.Added)+len(r.Updated)+len(r.Removed))
	add := func(change string, items catalog.Snapshot) {
		for _, item := range items {
			rows = append(rows, map[string]interface{}{
				"change": change,
				"id":     item.ID(),
				"name":   item.Name(),
			})
		}
	}
	add("added", r.Added)
	add("updated", r.Updated)
	add("removed", r.Removed)
	return rows
}

// normalize round-trips an item through JSON so that Go numeric types and
// nested typed values compare the way their JSON text would.
func normalize(item catalog.Item) (map[string]interface{}, error) {
	b, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]interface{}{}
	}
	return m, nil
}

type index struct {
	keys []string       // key of the item at each position
	last map[string]int // key -> position of its last occurrence
	dups []string       // keys seen more than once, first-seen order
}

func buildIndex(snap catalog.Snapshot) index {
	idx := index{
		keys: make([]string, len(snap)),
		last: make(map[string]int, len(snap)),
	}
	for i, item := range snap {
		key := Key(item)
		idx.keys[i] = key
		if _, seen := idx.last[key]; seen && !contains(idx.dups, key) {
			idx.dups = append(idx.dups, key)
		}
		idx.last[key] = i
	}
	return idx
}

func mergeDuplicates(a, b []string) []string {
	var out []string
	for _, k := range append(append([]string{}, a...), b...) {
		if !contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
