// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/tfctl/catsync/internal/backup"
	"github.com/tfctl/catsync/internal/catalog"
	"github.com/tfctl/catsync/internal/differ"
	"github.com/tfctl/catsync/internal/log"
	"github.com/tfctl/catsync/internal/notify"
	"github.com/tfctl/catsync/internal/store"
)

// User-facing notification texts.
const (
	MsgSynced            = "Данные синхронизированы"
	MsgSyncFailed        = "Ошибка синхронизации"
	MsgProductsUpdated   = "Товары обновлены"
	MsgCategoriesUpdated = "Категории обновлены"
	MsgRestored          = "✅ Данные восстановлены из бэкапа"
	MsgRestoreFailed     = "Ошибка восстановления данных"
)

// DefaultReloadDelay is how long after a change event the reloader runs.
const DefaultReloadDelay = time.Second

// Reloader refreshes whatever displays the catalog after it changed.
type Reloader func(ctx context.Context) error

// Manager coordinates sync, change notification and backups for one store.
type Manager struct {
	store store.Store

	mu  sync.Mutex
	cfg Config

	syncMu sync.Mutex

	notifier    notify.Notifier
	reloader    Reloader
	reloadDelay time.Duration
	now         func() time.Time

	reloadMu      sync.Mutex
	reloadPending bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithNotifier sets where notifications go. nil discards them.
func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithReloader sets the hook run after a catalog change.
func WithReloader(r Reloader) Option {
	return func(m *Manager) { m.reloader = r }
}

// WithReloadDelay overrides DefaultReloadDelay.
func WithReloadDelay(d time.Duration) Option {
	return func(m *Manager) { m.reloadDelay = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New returns a Manager over s starting from cfg.
func New(s store.Store, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		store:       s,
		cfg:         cfg,
		reloadDelay: DefaultReloadDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = notify.Discard
	}
	return m
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Update applies fn to the configuration.
func (m *Manager) Update(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.cfg)
}

// LoadConfig merges the stored syncConfig over the current configuration and
// takes LastSync from the lastSync key.
func (m *Manager) LoadConfig(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, catalog.KeySyncConfig)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", catalog.KeySyncConfig, err)
	}
	last, _, err := m.store.Get(ctx, catalog.KeyLastSync)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", catalog.KeyLastSync, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.cfg
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return fmt.Errorf("malformed %s: %w", catalog.KeySyncConfig, err)
		}
	}
	cfg.LastSync = last
	m.cfg = cfg

	log.Debugf("config loaded: autoSync=%t interval=%dms notify=%t lastSync=%s",
		cfg.AutoSync, cfg.SyncInterval, cfg.NotifyChanges, cfg.LastSync)
	return nil
}

// SaveConfig writes the configuration to syncConfig.
func (m *Manager) SaveConfig(ctx context.Context) error {
	b, err := json.Marshal(m.Config())
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", catalog.KeySyncConfig, err)
	}
	if err := m.store.Set(ctx, catalog.KeySyncConfig, string(b)); err != nil {
		return fmt.Errorf("failed to write %s: %w", catalog.KeySyncConfig, err)
	}
	return nil
}

// Sync checks that both collections parse and advances the lastSync marker.
// On failure the marker is left alone and an error notification is shown.
func (m *Manager) Sync(ctx context.Context) error {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	log.Debug("sync started")
	if err := m.sync(ctx); err != nil {
		log.WithError(err).Errorf("sync failed")
		m.notifier.Notify(MsgSyncFailed, notify.Error)
		return err
	}
	log.Infof("sync complete: lastSync=%s", m.Config().LastSync)

	if m.Config().NotifyChanges {
		m.notifier.Notify(MsgSynced, notify.Success)
	}
	return nil
}

func (m *Manager) sync(ctx context.Context) error {
	for _, key := range []string{catalog.KeyProducts, catalog.KeyCategories} {
		raw, err := store.GetOr(ctx, m.store, key, "[]")
		if err != nil {
			return err
		}
		if _, err := catalog.ParseSnapshot([]byte(raw)); err != nil {
			return fmt.Errorf("malformed %s: %w", key, err)
		}
	}

	stamp := catalog.FormatTime(m.now())
	if err := m.store.Set(ctx, catalog.KeyLastSync, stamp); err != nil {
		return fmt.Errorf("failed to write %s: %w", catalog.KeyLastSync, err)
	}
	m.Update(func(c *Config) { c.LastSync = stamp })
	return m.SaveConfig(ctx)
}

// Start runs Sync every SyncInterval until ctx is done. It returns at once
// when AutoSync is off. A sync still running when the next tick is due
// delays that tick rather than overlapping it.
func (m *Manager) Start(ctx context.Context) {
	cfg := m.Config()
	if !cfg.AutoSync {
		log.Debug("auto-sync disabled")
		return
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()
	log.Debugf("auto-sync every %s", cfg.Interval())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Sync(ctx)
		}
	}
}

// OnStorageChange reacts to a change of products or categoriesData. Other
// keys, deletions and changes while notifications are off are ignored.
func (m *Manager) OnStorageChange(ctx context.Context, ev store.Event) {
	var msg string
	switch ev.Key {
	case catalog.KeyProducts:
		msg = MsgProductsUpdated
	case catalog.KeyCategories:
		msg = MsgCategoriesUpdated
	default:
		return
	}
	if !m.Config().NotifyChanges || ev.NewValue == "" {
		return
	}

	if summary, ok := changeSummary(ev); ok {
		msg = fmt.Sprintf("%s (%s)", msg, summary)
	}
	m.notifier.Notify(msg, notify.Info)
	m.scheduleReload(ctx)
}

func changeSummary(ev store.Event) (string, bool) {
	before, err := catalog.ParseSnapshot([]byte(ev.OldValue))
	if err != nil {
		return "", false
	}
	after, err := catalog.ParseSnapshot([]byte(ev.NewValue))
	if err != nil {
		return "", false
	}
	return differ.Summary(differ.Diff(before, after)), true
}

// scheduleReload runs the reloader after the reload delay. Changes arriving
// while a reload is pending share it.
func (m *Manager) scheduleReload(ctx context.Context) {
	if m.reloader == nil {
		return
	}

	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	if m.reloadPending {
		return
	}
	m.reloadPending = true

	time.AfterFunc(m.reloadDelay, func() {
		m.reloadMu.Lock()
		m.reloadPending = false
		m.reloadMu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := m.reloader(ctx); err != nil {
			log.WithError(err).Warnf("reload failed")
		}
	})
}

// Listen feeds w's events to OnStorageChange until ctx is done or the watch
// ends.
func (m *Manager) Listen(ctx context.Context, w store.Watcher) error {
	events, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			log.Debugf("store change: key=%s", ev.Key)
			m.OnStorageChange(ctx, ev)
		}
	}
}

// Run starts auto-sync and, when w is not nil, listens for changes. It blocks
// until ctx is done or the watch fails.
func (m *Manager) Run(ctx context.Context, w store.Watcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Start(ctx)
	}()

	var err error
	if w != nil {
		err = m.Listen(ctx, w)
	} else {
		log.Warnf("store does not support change events")
	}
	if err == nil {
		<-ctx.Done()
	}
	cancel()
	wg.Wait()
	return err
}

// ExportData renders the catalog in format ("json" or "csv").
func (m *Manager) ExportData(ctx context.Context, format string) ([]byte, error) {
	doc, err := backup.Export(ctx, m.store, m.now())
	if err != nil {
		return nil, err
	}
	return backup.Render(doc, format)
}

// RestoreFromBackup restores the catalog from a backup document.
func (m *Manager) RestoreFromBackup(ctx context.Context, data []byte) error {
	err := m.restore(ctx, data)
	if err != nil {
		log.WithError(err).Errorf("restore failed")
		m.notifier.Notify(MsgRestoreFailed, notify.Error)
		return err
	}
	m.notifier.Notify(MsgRestored, notify.Success)
	return nil
}

func (m *Manager) restore(ctx context.Context, data []byte) error {
	b, err := backup.Parse(data)
	if err != nil {
		return err
	}
	return backup.Restore(ctx, m.store, b)
}

// CheckCompatibility reports whether the store holds both collections.
func (m *Manager) CheckCompatibility(ctx context.Context) (bool, []string) {
	return backup.CheckCompatibility(ctx, m.store)
}
