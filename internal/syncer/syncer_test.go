// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/notify"
	"github.com/tfctl/catsync/internal/store"
)

var fixed = time.Date(2026, 10, 18, 12, 30, 45, 123_000_000, time.UTC)

func newManager(t *testing.T, cfg Config, opts ...Option) (*Manager, *store.Memory, *notify.Recorder) {
	t.Helper()
	s := store.NewMemory()
	rec := &notify.Recorder{}
	opts = append([]Option{WithNotifier(rec), WithClock(func() time.Time { return fixed })}, opts...)
	return New(s, cfg, opts...), s, rec
}

func get(t *testing.T, s store.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, Config{AutoSync: true, SyncInterval: 300000, NotifyChanges: true}, cfg)
	assert.Equal(t, 5*time.Minute, cfg.Interval())
	assert.Equal(t, 5*time.Minute, Config{SyncInterval: -1}.Interval())
	assert.Equal(t, 250*time.Millisecond, Config{SyncInterval: 250}.Interval())
}

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		m, _, _ := newManager(t, DefaultConfig())
		require.NoError(t, m.LoadConfig(ctx))
		assert.Equal(t, DefaultConfig(), m.Config())
	})

	t.Run("stored values merge over current", func(t *testing.T) {
		m, s, _ := newManager(t, DefaultConfig())
		require.NoError(t, s.Set(ctx, catalog.KeySyncConfig, `{"autoSync":false,"lastSync":"stale"}`))
		require.NoError(t, s.Set(ctx, catalog.KeyLastSync, "2026-10-01T00:00:00.000Z"))
		require.NoError(t, m.LoadConfig(ctx))

		cfg := m.Config()
		assert.False(t, cfg.AutoSync)
		assert.Equal(t, DefaultInterval, cfg.SyncInterval)
		assert.True(t, cfg.NotifyChanges)
		assert.Equal(t, "2026-10-01T00:00:00.000Z", cfg.LastSync)
	})

	t.Run("malformed", func(t *testing.T) {
		m, s, _ := newManager(t, DefaultConfig())
		require.NoError(t, s.Set(ctx, catalog.KeySyncConfig, `{`))
		assert.Error(t, m.LoadConfig(ctx))
		assert.Equal(t, DefaultConfig(), m.Config())
	})
}

func TestSaveConfig(t *testing.T) {
	ctx := context.Background()
	m, s, _ := newManager(t, Config{AutoSync: false, SyncInterval: 1000, NotifyChanges: true})
	require.NoError(t, m.SaveConfig(ctx))

	v, ok := get(t, s, catalog.KeySyncConfig)
	require.True(t, ok)
	assert.JSONEq(t, `{"autoSync":false,"syncInterval":1000,"notifyChanges":true}`, v)

	other := New(s, DefaultConfig())
	require.NoError(t, other.LoadConfig(ctx))
	assert.Equal(t, m.Config(), other.Config())
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("advances marker", func(t *testing.T) {
		m, s, rec := newManager(t, DefaultConfig())
		require.NoError(t, s.Set(ctx, catalog.KeyProducts, `[{"id":1}]`))
		require.NoError(t, m.Sync(ctx))

		v, ok := get(t, s, catalog.KeyLastSync)
		require.True(t, ok)
		assert.Equal(t, "2026-10-18T12:30:45.123Z", v)
		assert.Equal(t, v, m.Config().LastSync)

		raw, _ := get(t, s, catalog.KeySyncConfig)
		var stored Config
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		assert.Equal(t, v, stored.LastSync)

		assert.Equal(t, []notify.Entry{{Message: MsgSynced, Kind: notify.Success}}, rec.Entries())
	})

	t.Run("quiet when notifications are off", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NotifyChanges = false
		m, s, rec := newManager(t, cfg)
		require.NoError(t, m.Sync(ctx))
		_, ok := get(t, s, catalog.KeyLastSync)
		assert.True(t, ok)
		assert.Empty(t, rec.Entries())
	})

	t.Run("malformed collection", func(t *testing.T) {
		for _, key := range []string{catalog.KeyProducts, catalog.KeyCategories} {
			t.Run(key, func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.NotifyChanges = false
				m, s, rec := newManager(t, cfg)
				require.NoError(t, s.Set(ctx, key, `{not json`))

				err := m.Sync(ctx)
				require.Error(t, err)
				assert.Contains(t, err.Error(), key)

				_, ok := get(t, s, catalog.KeyLastSync)
				assert.False(t, ok)
				assert.Empty(t, m.Config().LastSync)
				assert.Equal(t, []notify.Entry{{Message: MsgSyncFailed, Kind: notify.Error}}, rec.Entries())
			})
		}
	})
}

func TestStart(t *testing.T) {
	t.Run("disabled returns at once", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AutoSync = false
		m, _, _ := newManager(t, cfg)

		done := make(chan struct{})
		go func() {
			m.Start(context.Background())
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Start did not return")
		}
	})

	t.Run("ticks until cancelled", func(t *testing.T) {
		m, s, rec := newManager(t, Config{AutoSync: true, SyncInterval: 10, NotifyChanges: true})
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			m.Start(ctx)
			close(done)
		}()

		require.Eventually(t, func() bool { return len(rec.Entries()) >= 2 }, 2*time.Second, 5*time.Millisecond)
		cancel()
		<-done

		_, ok := get(t, s, catalog.KeyLastSync)
		assert.True(t, ok)
	})
}

func TestOnStorageChange(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		cfg    Config
		ev     store.Event
		expect []notify.Entry
	}{
		{
			name:   "products added",
			cfg:    DefaultConfig(),
			ev:     store.Event{Key: catalog.KeyProducts, OldValue: `[]`, NewValue: `[{"id":1}]`},
			expect: []notify.Entry{{Message: MsgProductsUpdated + " (+1 ~0 -0)", Kind: notify.Info}},
		},
		{
			name:   "categories changed",
			cfg:    DefaultConfig(),
			ev:     store.Event{Key: catalog.KeyCategories, OldValue: `[{"id":1,"n":"a"},{"id":2}]`, NewValue: `[{"id":1,"n":"b"}]`},
			expect: []notify.Entry{{Message: MsgCategoriesUpdated + " (+0 ~1 -1)", Kind: notify.Info}},
		},
		{
			name:   "unparsable value keeps plain message",
			cfg:    DefaultConfig(),
			ev:     store.Event{Key: catalog.KeyProducts, OldValue: `garbage`, NewValue: `[]`},
			expect: []notify.Entry{{Message: MsgProductsUpdated, Kind: notify.Info}},
		},
		{
			name: "other key",
			cfg:  DefaultConfig(),
			ev:   store.Event{Key: catalog.KeySiteSettings, NewValue: `{}`},
		},
		{
			name: "removed key",
			cfg:  DefaultConfig(),
			ev:   store.Event{Key: catalog.KeyProducts, OldValue: `[]`},
		},
		{
			name: "notifications off",
			cfg:  Config{AutoSync: true, SyncInterval: 1000},
			ev:   store.Event{Key: catalog.KeyProducts, NewValue: `[]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, rec := newManager(t, tt.cfg)
			m.OnStorageChange(ctx, tt.ev)
			if tt.expect == nil {
				assert.Empty(t, rec.Entries())
				return
			}
			assert.Equal(t, tt.expect, rec.Entries())
		})
	}
}

func TestOnStorageChange_Reload(t *testing.T) {
	var calls atomic.Int32
	reloaded := make(chan struct{}, 10)
	m, _, _ := newManager(t, DefaultConfig(),
		WithReloadDelay(20*time.Millisecond),
		WithReloader(func(context.Context) error {
			calls.Add(1)
			reloaded <- struct{}{}
			return nil
		}),
	)

	ctx := context.Background()
	m.OnStorageChange(ctx, store.Event{Key: catalog.KeyProducts, NewValue: `[]`})
	m.OnStorageChange(ctx, store.Event{Key: catalog.KeyCategories, NewValue: `[]`})
	assert.Equal(t, int32(0), calls.Load())

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("reloader not called")
	}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	// A later change schedules a fresh reload.
	m.OnStorageChange(ctx, store.Event{Key: catalog.KeyProducts, NewValue: `[1]`})
	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("second reload not called")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestOnStorageChange_NoReloadAfterCancel(t *testing.T) {
	var calls atomic.Int32
	m, _, _ := newManager(t, DefaultConfig(),
		WithReloadDelay(20*time.Millisecond),
		WithReloader(func(context.Context) error {
			calls.Add(1)
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	m.OnStorageChange(ctx, store.Event{Key: catalog.KeyProducts, NewValue: `[]`})
	cancel()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestListenAndRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoSync = false
	m, s, rec := newManager(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx, s) }()

	n := 0
	require.Eventually(t, func() bool {
		n++
		_ = s.Set(context.Background(), catalog.KeyProducts, fmt.Sprintf(`[{"id":%d}]`, n))
		return len(rec.Entries()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, notify.Info, rec.Entries()[0].Kind)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRun_NoWatcher(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoSync = false
	m, _, _ := newManager(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.NoError(t, m.Run(ctx, nil))
}

func TestExportData(t *testing.T) {
	ctx := context.Background()
	m, s, _ := newManager(t, DefaultConfig())
	require.NoError(t, s.Set(ctx, catalog.KeyProducts, `[{"id":1,"name":"Tea","status":"in_stock"}]`))

	b, err := m.ExportData(ctx, "json")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"exportDate": "2026-10-18T12:30:45.123Z"`)
	assert.Contains(t, string(b), `"version": "1.0"`)

	b, err = m.ExportData(ctx, "csv")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Tea";"";;;В наличии;""`)

	_, err = m.ExportData(ctx, "pdf")
	assert.Error(t, err)
}

func TestRestoreFromBackup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		m, s, rec := newManager(t, DefaultConfig())
		require.NoError(t, m.RestoreFromBackup(ctx, []byte(`{"products":[{"id":5}],"siteSettings":{"x":1}}`)))

		v, _ := get(t, s, catalog.KeyProducts)
		assert.Equal(t, `[{"id":5}]`, v)
		_, ok := get(t, s, catalog.KeyCategories)
		assert.False(t, ok)
		assert.Equal(t, []notify.Entry{{Message: MsgRestored, Kind: notify.Success}}, rec.Entries())
	})

	t.Run("failure", func(t *testing.T) {
		m, _, rec := newManager(t, DefaultConfig())
		assert.Error(t, m.RestoreFromBackup(ctx, []byte(`{`)))
		assert.Equal(t, []notify.Entry{{Message: MsgRestoreFailed, Kind: notify.Error}}, rec.Entries())
	})

	t.Run("null document", func(t *testing.T) {
		m, _, rec := newManager(t, DefaultConfig())
		assert.Error(t, m.RestoreFromBackup(ctx, []byte(`null`)))
		assert.Equal(t, []notify.Entry{{Message: MsgRestoreFailed, Kind: notify.Error}}, rec.Entries())
	})
}

func TestCheckCompatibility(t *testing.T) {
	ctx := context.Background()
	m, s, _ := newManager(t, DefaultConfig())

	ok, missing := m.CheckCompatibility(ctx)
	assert.False(t, ok)
	assert.Len(t, missing, 2)

	require.NoError(t, s.Set(ctx, catalog.KeyProducts, `[]`))
	require.NoError(t, s.Set(ctx, catalog.KeyCategories, `[]`))
	ok, missing = m.CheckCompatibility(ctx)
	assert.True(t, ok)
	assert.Empty(t, missing)
}
