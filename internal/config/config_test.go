// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points CATSYNC_CFG_FILE at a testdata file and resets the
// global Config so the next getter reloads it.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err)

	t.Setenv("CATSYNC_CFG_FILE", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "file:/var/lib/catsync", cfg.Data["store"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				sync, ok := cfg.Data["sync"].(map[string]interface{})
				require.True(t, ok, "sync should be a map")
				assert.Equal(t, 60000, sync["interval"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Empty(t, cfg.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("CATSYNC_CFG_FILE", "/nonexistent/path/catsync.yaml")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_CfgFileIsDirectory(t *testing.T) {
	t.Setenv("CATSYNC_CFG_FILE", "testdata")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{"simple", "simple.yaml", "store", nil, "file:/var/lib/catsync", false},
		{"nested", "nested.yaml", "backup.dir", nil, "/srv/backups", false},
		{"missing with default", "simple.yaml", "missing", []string{"dflt"}, "dflt", false},
		{"missing without default", "simple.yaml", "missing", nil, "", true},
		{"non-string value", "mixed-types.yaml", "version", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{"int value", "mixed-types.yaml", "version", nil, 1, false},
		{"float truncated", "mixed-types.yaml", "timeout", nil, 30, false},
		{"nested", "nested.yaml", "sync.interval", nil, 60000, false},
		{"missing with default", "simple.yaml", "sync.interval", []int{300000}, 300000, false},
		{"missing without default", "simple.yaml", "missing", nil, 0, true},
		{"non-int value", "simple.yaml", "store", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetInt(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []bool
		want         bool
		wantErr      bool
	}{
		{"yaml bool", "nested.yaml", "sync.notify", nil, false, false},
		{"string bool", "nested.yaml", "sync.auto", nil, true, false},
		{"top-level bool", "mixed-types.yaml", "enabled", nil, true, false},
		{"missing with default", "simple.yaml", "sync.notify", []bool{true}, true, false},
		{"not a bool", "mixed-types.yaml", "name", nil, false, true},
		{"number is not a bool", "mixed-types.yaml", "version", nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetBool(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	got, err := GetStringSlice("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"products", "categories"}, got)

	_, err = GetStringSlice("mixed")
	assert.Error(t, err)

	_, err = GetStringSlice("name")
	assert.Error(t, err)

	got, err = GetStringSlice("missing", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)
}

func TestGet_Namespace(t *testing.T) {
	setupTestConfig(t, "nested.yaml")
	_, err := Load("export")
	require.NoError(t, err)

	// Namespaced key wins.
	got, err := GetString("format")
	require.NoError(t, err)
	assert.Equal(t, "csv", got)

	// Unnamespaced keys still resolve.
	n, err := GetInt("backup.retention")
	require.NoError(t, err)
	assert.Equal(t, 72, n)
}
