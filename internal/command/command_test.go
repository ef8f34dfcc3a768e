// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/tfctl/catsync/internal/backup"
	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/syncer"
)

const seedBackup = `{
  "products": [
    {"id": 1, "name": "Lamp", "category": "home", "price": 10.5, "quantity": 4, "status": "in_stock"},
    {"id": 2, "name": "Desk", "category": "office", "price": 120, "quantity": 1, "status": "out_of_stock"}
  ],
  "categories": [
    {"id": "home", "name": "Home"},
    {"id": "office", "name": "Office"}
  ]
}`

const changedBackup = `{
  "products": [
    {"id": 1, "name": "Lamp", "category": "home", "price": 12, "quantity": 4, "status": "in_stock"},
    {"id": 3, "name": "Chair", "category": "office", "price": 45, "quantity": 6, "status": "in_stock"}
  ],
  "categories": []
}`

type env struct {
	dir   string
	store string
}

// newEnv isolates a test from the user's config and data directories.
func newEnv(t *testing.T, cfg string) env {
	t.Helper()
	dir := t.TempDir()

	cfgFile := filepath.Join(dir, "catsync.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o600))
	t.Setenv("CATSYNC_CFG_FILE", cfgFile)
	t.Setenv("CATSYNC_DATA_DIR", filepath.Join(dir, "data"))

	return env{dir: dir, store: "file:" + filepath.Join(dir, "store")}
}

func (e env) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	args = append([]string{"catsync"}, args...)

	app, err := InitApp(context.Background(), args)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(context.Background(), args)
	return out.String(), errOut.String(), err
}

func TestRestoreAndList(t *testing.T) {
	e := newEnv(t, "list:\n  padding: 2\n")
	src := e.write(t, "seed.json", seedBackup)

	_, stderr, err := run(t, "restore", "--store", e.store, src)
	require.NoError(t, err)
	assert.Contains(t, stderr, syncer.MsgRestored)

	out, _, err := run(t, "list", "--store", e.store, "--output", "json", "products")
	require.NoError(t, err)
	rows := gjson.Parse(out).Array()
	require.Len(t, rows, 2)
	assert.Equal(t, "Lamp", rows[0].Get("name").String())
	assert.Equal(t, catalog.StatusLabel(catalog.StatusInStock), rows[0].Get("status").String())

	out, _, err = run(t, "list", "--store", e.store, "--output", "json", "--filter", "price>100", "products")
	require.NoError(t, err)
	rows = gjson.Parse(out).Array()
	require.Len(t, rows, 1)
	assert.Equal(t, "Desk", rows[0].Get("name").String())

	out, _, err = run(t, "list", "--store", e.store, "--schema", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "name")

	_, _, err = run(t, "list", "--store", e.store, "orders")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	e := newEnv(t, "")

	_, _, err := run(t, "check", "--store", e.store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "products")
	assert.Contains(t, err.Error(), "categories")

	_, _, err = run(t, "restore", "--store", e.store, e.write(t, "seed.json", seedBackup))
	require.NoError(t, err)

	out, _, err := run(t, "check", "--store", e.store)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestExport(t *testing.T) {
	e := newEnv(t, "")
	_, _, err := run(t, "restore", "--store", e.store, e.write(t, "seed.json", seedBackup))
	require.NoError(t, err)

	dest := filepath.Join(e.dir, "out", "backup.json")
	_, _, err = run(t, "export", "--store", e.store, "--out", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Len(t, gjson.GetBytes(data, "products").Array(), 2)
	assert.Len(t, gjson.GetBytes(data, "categories").Array(), 2)

	out, _, err := run(t, "export", "--store", e.store, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Lamp")

	_, _, err = run(t, "export", "--store", e.store, "--format", "csv", "--seal", "--passphrase", "pw")
	assert.Error(t, err)

	_, _, err = run(t, "export", "--store", e.store, "--format", "xml")
	assert.Error(t, err)
}

func TestSealedArchiveRoundTrip(t *testing.T) {
	e := newEnv(t, "backup:\n  retention: 24\n")
	_, _, err := run(t, "restore", "--store", e.store, e.write(t, "seed.json", seedBackup))
	require.NoError(t, err)

	dest := filepath.Join(e.dir, "sealed.json")
	_, _, err = run(t, "export", "--store", e.store, "--archive", "--seal", "--passphrase", "pw", "--out", dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, gjson.GetBytes(data, "encrypted_data").Exists())

	out, _, err := run(t, "backups", "--output", "json")
	require.NoError(t, err)
	entries := gjson.Parse(out).Array()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Get("sealed").Bool())

	fresh := "file:" + filepath.Join(e.dir, "fresh")
	_, _, err = run(t, "restore", "--store", fresh, "--latest", "--passphrase", "wrong")
	assert.Error(t, err)

	_, _, err = run(t, "restore", "--store", fresh, "--latest", "--passphrase", "pw")
	require.NoError(t, err)
	_, _, err = run(t, "check", "--store", fresh)
	assert.NoError(t, err)
}

func TestRestoreErrors(t *testing.T) {
	e := newEnv(t, "")

	_, _, err := run(t, "restore", "--store", e.store)
	assert.Error(t, err)

	_, _, err = run(t, "restore", "--store", e.store, "--latest")
	assert.Error(t, err)

	_, stderr, err := run(t, "restore", "--store", e.store, e.write(t, "bad.json", "{not json"))
	assert.Error(t, err)
	assert.Contains(t, stderr, syncer.MsgRestoreFailed)
}

func TestDiff(t *testing.T) {
	e := newEnv(t, "")
	before := e.write(t, "before.json", seedBackup)
	after := e.write(t, "after.json", changedBackup)

	out, _, err := run(t, "diff", "--output", "json", before, after)
	require.NoError(t, err)
	rows := gjson.Parse(out).Array()
	require.Len(t, rows, 3)
	changes := map[string]string{}
	for _, r := range rows {
		changes[r.Get("id").String()] = r.Get("change").String()
	}
	assert.Equal(t, map[string]string{"3": "added", "1": "updated", "2": "removed"}, changes)

	out, _, err = run(t, "diff", "--titles", "--detail", before, after)
	require.NoError(t, err)
	assert.Contains(t, out, "products: +1 ~1 -1")
	assert.Contains(t, out, "price")

	out, _, err = run(t, "diff", "--collection", "categories", "--output", "json", before, after)
	require.NoError(t, err)
	assert.Len(t, gjson.Parse(out).Array(), 2)

	_, _, err = run(t, "restore", "--store", e.store, before)
	require.NoError(t, err)
	out, _, err = run(t, "diff", "--store", e.store, "--output", "json", storeSource, before)
	require.NoError(t, err)
	assert.Empty(t, gjson.Parse(out).Array())

	_, _, err = run(t, "diff", before)
	assert.Error(t, err)
}

func TestConfigAndStatus(t *testing.T) {
	e := newEnv(t, "sync:\n  interval: 120000\n")

	out, _, err := run(t, "config", "--store", e.store)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), gjson.Get(out, "syncInterval").Int())
	assert.True(t, gjson.Get(out, "autoSync").Bool())

	out, _, err = run(t, "config", "--store", e.store, "--auto-sync=false", "--interval", "60000")
	require.NoError(t, err)
	assert.False(t, gjson.Get(out, "autoSync").Bool())
	assert.Equal(t, int64(60000), gjson.Get(out, "syncInterval").Int())

	_, _, err = run(t, "config", "--store", e.store, "--interval", "10")
	assert.Error(t, err)

	_, _, err = run(t, "sync", "--store", e.store)
	require.NoError(t, err)

	out, _, err = run(t, "status", "--store", e.store, "--output", "json")
	require.NoError(t, err)
	settings := map[string]string{}
	for _, r := range gjson.Parse(out).Array() {
		settings[r.Get("setting").String()] = r.Get("value").String()
	}
	assert.Equal(t, "false", settings["autoSync"])
	assert.Equal(t, "1m0s", settings["syncInterval"])
	assert.NotEqual(t, "never", settings["lastSync"])
	assert.Contains(t, settings["compatible"], "no")
	assert.Equal(t, "0", settings["backups"])
}

func TestBackupsPrune(t *testing.T) {
	e := newEnv(t, "")

	_, _, err := run(t, "backups", "--prune")
	assert.Error(t, err)

	out, _, err := run(t, "backups", "--prune", "--older-than", "1")
	require.NoError(t, err)
	assert.Equal(t, "pruned 0 backup(s)\n", out)

	a := backup.NewArchive(filepath.Join(e.dir, "data"))
	now := time.Now()
	old, err := a.Save([]byte(seedBackup), false, now.Add(-48*time.Hour))
	require.NoError(t, err)
	recent, err := a.Save([]byte(seedBackup), false, now.Add(-time.Hour))
	require.NoError(t, err)

	out, _, err = run(t, "backups", "--prune", "--older-than", "24")
	require.NoError(t, err)
	assert.Equal(t, "pruned 1 backup(s)\n", out)

	out, _, err = run(t, "backups", "--output", "json")
	require.NoError(t, err)
	entries := gjson.Parse(out).Array()
	require.Len(t, entries, 1)
	assert.Equal(t, recent.Name, entries[0].Get("name").String())
	assert.NoFileExists(t, old.Path)
	assert.FileExists(t, recent.Path)
}

func TestCompletion(t *testing.T) {
	newEnv(t, "")

	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _catsync catsync")

	out, _, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "compdef _catsync catsync")

	_, _, err = run(t, "completion", "fish")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		validator FlagValidatorType
		wantErr   bool
	}{
		{"output text", "text", OutputValidator, false},
		{"output yaml", "yaml", OutputValidator, false},
		{"output bogus", "xml", OutputValidator, true},
		{"format csv", "csv", FormatValidator, false},
		{"format yaml", "yaml", FormatValidator, true},
		{"collection products", "products", CollectionValidator, false},
		{"collection categories", "categories", CollectionValidator, false},
		{"collection orders", "orders", CollectionValidator, true},
		{"interval ok", 1000, IntervalValidator, false},
		{"interval short", 999, IntervalValidator, true},
		{"interval wrong type", "1000", IntervalValidator, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCollectionKey(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"products", catalog.KeyProducts, false},
		{"categories", catalog.KeyCategories, false},
		{catalog.KeyCategories, catalog.KeyCategories, false},
		{"orders", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectionKey(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
