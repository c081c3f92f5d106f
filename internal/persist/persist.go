// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package persist serializes each logical store as JSON into a kv.Backend.
// Every save writes three keys: the primary value, a _backup shadow copy and
// a _timestamp. Loads prefer the primary and fall back to the backup. A
// separate _initialized sentinel records that sample data was seeded once.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pantrykeeper/internal/kv"
	"pantrykeeper/internal/metrics"
)

// ErrWrite wraps every failed save. The in-memory state is already updated
// when it is returned.
var ErrWrite = errors.New("storage write failed")

const (
	backupSuffix      = "_backup"
	timestampSuffix   = "_timestamp"
	initializedSuffix = "_initialized"
)

// Persister reads and writes named JSON documents.
type Persister struct {
	backend kv.Backend
	now     func() time.Time
}

// New returns a Persister over backend.
func New(backend kv.Backend) *Persister {
	return &Persister{backend: backend, now: time.Now}
}

// Save marshals v and writes it under name, name_backup and name_timestamp.
// A failure is logged and returned wrapped in ErrWrite; it is never retried.
func (p *Persister) Save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return p.fail(name, fmt.Errorf("marshal %s: %w", name, err))
	}
	if err := p.backend.Set(ctx, name, data); err != nil {
		return p.fail(name, err)
	}
	if err := p.backend.Set(ctx, name+backupSuffix, data); err != nil {
		return p.fail(name, err)
	}
	ts := strconv.FormatInt(p.now().UnixMilli(), 10)
	if err := p.backend.Set(ctx, name+timestampSuffix, []byte(ts)); err != nil {
		return p.fail(name, err)
	}
	return nil
}

func (p *Persister) fail(name string, err error) error {
	metrics.StorageWriteFailures.WithLabelValues(name).Inc()
	slog.Warn("local storage write failed", "store", name, "error", err)
	return fmt.Errorf("%w: %s: %v", ErrWrite, name, err)
}

// Load decodes the document stored under name into v. It returns false when
// neither the primary nor the backup key holds a usable value.
func (p *Persister) Load(ctx context.Context, name string, v any) (bool, error) {
	data, err := p.read(ctx, name)
	if err != nil {
		return false, err
	}
	if data != nil {
		err := json.Unmarshal(data, v)
		if err == nil {
			return true, nil
		}
		slog.Warn("primary copy unreadable, trying backup", "store", name, "error", err)
	}

	backup, err := p.read(ctx, name+backupSuffix)
	if err != nil {
		return false, err
	}
	if backup == nil {
		return false, nil
	}
	if err := json.Unmarshal(backup, v); err != nil {
		return false, fmt.Errorf("decode %s backup: %w", name, err)
	}
	slog.Info("store restored from backup copy", "store", name)
	return true, nil
}

// read returns nil for missing keys and for the literal "null".
func (p *Persister) read(ctx context.Context, key string) ([]byte, error) {
	data, err := p.backend.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	return trimmed, nil
}

// SavedAt returns the time of the last successful save of name.
func (p *Persister) SavedAt(ctx context.Context, name string) (time.Time, bool) {
	data, err := p.read(ctx, name+timestampSuffix)
	if err != nil || data == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Initialized reports whether sample data was seeded for name.
func (p *Persister) Initialized(ctx context.Context, name string) bool {
	data, err := p.read(ctx, name+initializedSuffix)
	return err == nil && string(data) == "true"
}

// MarkInitialized records that name has been seeded so it is never seeded
// again, even if the user later empties it.
func (p *Persister) MarkInitialized(ctx context.Context, name string) error {
	if err := p.backend.Set(ctx, name+initializedSuffix, []byte("true")); err != nil {
		return p.fail(name, err)
	}
	return nil
}

// Remove deletes a document and its shadow keys. Used for legacy lists
// once they have been folded into the product store.
func (p *Persister) Remove(ctx context.Context, name string) error {
	for _, key := range []string{name, name + backupSuffix, name + timestampSuffix} {
		if err := p.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}
