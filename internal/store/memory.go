// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Every Set and Remove is delivered to active
// watchers.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	watchers map[chan Event]struct{}
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		data:     map[string]string{},
		watchers: map[chan Event]struct{}{},
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	old, existed := m.data[key]
	m.data[key] = value
	if existed && old == value {
		m.mu.Unlock()
		return nil
	}
	m.broadcast(Event{Key: key, OldValue: old, NewValue: value})
	m.mu.Unlock()
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	old, ok := m.data[key]
	delete(m.data, key)
	if ok {
		m.broadcast(Event{Key: key, OldValue: old})
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }

// Watch implements Watcher.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 100)
	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.watchers, ch)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}

// broadcast must be called with mu held. Slow watchers drop events rather
// than block writers.
func (m *Memory) broadcast(ev Event) {
	for ch := range m.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}
