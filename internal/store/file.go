// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/tfctl/catsync/internal/log"
)

// File is a Store keeping one file per key beneath Dir. Writes go to a
// hidden temporary file that is renamed into place, so readers and watchers
// never observe a partially written value.
type File struct {
	Dir string
}

// DefaultDir resolves the base data directory.
// Precedence:
//  1. CATSYNC_DATA_DIR, if set and non-empty
//  2. os.UserConfigDir()/catsync
//
// Returns ("", false) if a base cannot be resolved.
func DefaultDir() (string, bool) {
	if d, ok := os.LookupEnv("CATSYNC_DATA_DIR"); ok && d != "" {
		return d, true
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "catsync"), true
	}
	return "", false
}

// NewFile returns a File store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	log.Debugf("file store: dir=%s", dir)
	return &File{Dir: dir}, nil
}

// Path returns the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.Dir, key)
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(b), true, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	log.Tracef("file store write: key=%s len=%d", key, len(value))
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }

// Watch implements Watcher using fsnotify on the data directory. Values are
// read when a key file changes and compared against the last value seen, so
// repeated notifications for one write produce a single Event.
func (f *File) Watch(ctx context.Context) (<-chan Event, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := w.Add(f.Dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", f.Dir, err)
	}

	seen := f.snapshot()
	out := make(chan Event, 100)

	go func() {
		defer close(out)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				key := filepath.Base(ev.Name)
				if strings.HasPrefix(key, ".") || ValidateKey(key) != nil {
					continue
				}
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					continue
				}
				change, changed := f.observe(seen, key)
				if !changed {
					continue
				}
				log.Debugf("file store change: key=%s op=%s", key, ev.Op)
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("file store watcher error")
			}
		}
	}()

	return out, nil
}

// observe rereads key and reports an Event when its value differs from the
// one recorded in seen.
func (f *File) observe(seen map[string]string, key string) (Event, bool) {
	old, had := seen[key]
	b, err := os.ReadFile(f.Path(key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !had {
			return Event{}, false
		}
		delete(seen, key)
		return Event{Key: key, OldValue: old}, true
	case err != nil:
		log.WithError(err).Warnf("failed to read changed key %s", key)
		return Event{}, false
	}

	value := string(b)
	if had && value == old {
		return Event{}, false
	}
	seen[key] = value
	return Event{Key: key, OldValue: old, NewValue: value}, true
}

// snapshot reads every key currently present.
func (f *File) snapshot() map[string]string {
	seen := map[string]string{}
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return seen
	}
	for _, e := range entries {
		if e.IsDir() || ValidateKey(e.Name()) != nil {
			continue
		}
		if b, err := os.ReadFile(filepath.Join(f.Dir, e.Name())); err == nil {
			seen[e.Name()] = string(b)
		}
	}
	return seen
}
