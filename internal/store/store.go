// Package store persists API keys and processing history.
package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrUnavailable is returned when the backing table is missing.
var ErrUnavailable = errors.New("store: table not available")

// Capabilities records which tables the store can serve. It is probed once
// when the store is opened.
type Capabilities struct {
	APIKeys bool
	History bool
}

// Entry is one processed request.
type Entry struct {
	Tool      string
	Filename  string
	Success   bool
	ErrorCode string
	Duration  time.Duration
	CreatedAt time.Time
}

// Memory is an in-process store, used when no database is configured and in
// tests.
type Memory struct {
	mu      sync.Mutex
	keys    map[string]string
	history []Entry
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]string)}
}

func (m *Memory) Capabilities() Capabilities {
	return Capabilities{APIKeys: true, History: true}
}

func (m *Memory) AddKey(ctx context.Context, hash, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[hash] = name
	return nil
}

func (m *Memory) LookupKey(ctx context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[hash]
	return ok, nil
}

func (m *Memory) RecordHistory(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, e)
	return nil
}

// History returns the latest entries, newest first.
func (m *Memory) History(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.history[i])
	}
	return out, nil
}
