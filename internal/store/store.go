// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or contain characters
// other than letters, digits, '_', '-' and '.'.
var ErrInvalidKey = errors.New("invalid store key")

var keyRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a string-keyed value store. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Event describes a change to one key. NewValue is empty when the key was
// removed; OldValue is empty when it did not exist or was not known.
type Event struct {
	Key      string
	OldValue string
	NewValue string
}

// Watcher is implemented by stores that can report changes. The returned
// channel is closed once ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// ValidateKey returns ErrInvalidKey when key cannot be stored.
func ValidateKey(key string) error {
	if !keyRegex.MatchString(key) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open returns the store described by spec: "memory:", "file:<dir>" or
// "sqlite:<path>". An empty spec, or "file:" without a directory, uses the
// default data directory.
func Open(ctx context.Context, spec string) (Store, error) {
	kind, arg, found := strings.Cut(spec, ":")
	if !found {
		// A bare path is treated as a file store directory.
		kind, arg = "file", spec
	}

	switch kind {
	case "memory":
		return NewMemory(), nil
	case "file", "":
		if arg == "" {
			dir, ok := DefaultDir()
			if !ok {
				return nil, errors.New("no data directory could be resolved")
			}
			arg = dir
		}
		return NewFile(arg)
	case "sqlite":
		if arg == "" {
			return nil, errors.New("sqlite store needs a database path")
		}
		return NewSQLite(ctx, arg)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// GetOr returns the stored value for key, or dflt when the key is missing or
// empty.
func GetOr(ctx context.Context, s Store, key, dflt string) (string, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return dflt, nil
	}
	return v, nil
}
