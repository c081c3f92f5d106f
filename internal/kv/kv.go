// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package kv provides the local key/value backends that hold the serialized
// stores: an in-memory map, Valkey (Redis-compatible) and a SQLite file.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Backend is a flat string-keyed byte store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Memory is a process-local Backend used by tests and ephemeral runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailWrites makes every Set return the error, simulating a full quota.
	FailWrites error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the number of stored keys.
func (m *Memory) Keys() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
