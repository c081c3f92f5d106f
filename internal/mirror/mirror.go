// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mirror keeps the local stores and a remote document store in
// step. Local changes are pushed in order through a single queue; remote
// collections are watched and merged back with last-writer-wins. Every
// push carries a fresh op-id so the mirror can recognise its own writes
// when the remote store echoes them back.
package mirror

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pantrykeeper/internal/metrics"
	"pantrykeeper/internal/remote"
	"pantrykeeper/internal/store"
)

// DefaultRecentOps is how many of its own op-ids a Mirror remembers.
const DefaultRecentOps = 1024

// Store is a local store the mirror can follow and write into.
type Store interface {
	Subscribe(l store.Listener)
	ApplyRemote(ctx context.Context, recs []store.RemoteRecord) (int, error)
}

// Mirror pushes local changes and applies remote ones.
type Mirror struct {
	remote remote.DocStore
	recent *opLog
	now    func() time.Time

	mu     sync.Mutex
	stores map[string]Store
	queue  []store.Change
	wake   chan struct{}

	// pushMu serializes Flush so queue order is remote write order.
	pushMu sync.Mutex
}

// New returns a Mirror writing to r.
func New(r remote.DocStore) *Mirror {
	return &Mirror{
		remote: r,
		recent: newOpLog(DefaultRecentOps),
		now:    time.Now,
		stores: make(map[string]Store),
		wake:   make(chan struct{}, 1),
	}
}

// Register follows s under collection. Changes that came from the remote
// store are not queued again.
func (m *Mirror) Register(collection string, s Store) {
	m.mu.Lock()
	m.stores[collection] = s
	m.mu.Unlock()

	s.Subscribe(func(c store.Change) {
		if c.Remote {
			return
		}
		c.Collection = collection
		m.enqueue(c)
	})
}

func (m *Mirror) enqueue(c store.Change) {
	m.mu.Lock()
	m.queue = append(m.queue, c)
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued changes not yet pushed.
func (m *Mirror) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush pushes every queued change in order. A failed push is logged and
// counted; it does not stop the rest of the queue.
func (m *Mirror) Flush(ctx context.Context) {
	m.pushMu.Lock()
	defer m.pushMu.Unlock()
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		c := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		m.push(ctx, c)
	}
}

func (m *Mirror) push(ctx context.Context, c store.Change) {
	doc := remote.Document{
		Collection: c.Collection,
		ID:         c.ID,
		Version:    c.Version,
		OpID:       uuid.NewString(),
		Deleted:    c.Deleted,
		UpdatedAt:  c.Modified,
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = m.now()
	}
	if !c.Deleted {
		payload, err := json.Marshal(c.Record)
		if err != nil {
			slog.Warn("mirror encode failed", "collection", c.Collection, "id", c.ID, "error", err)
			metrics.RemotePushFailures.WithLabelValues(c.Collection).Inc()
			return
		}
		doc.Payload = payload
	}

	// Remembered before the write: a synchronous store may echo it back
	// from inside Put.
	m.recent.add(doc.OpID)
	if err := m.remote.Put(ctx, doc); err != nil {
		slog.Warn("mirror push failed", "collection", c.Collection, "id", c.ID, "error", err)
		metrics.RemotePushFailures.WithLabelValues(c.Collection).Inc()
		return
	}
	slog.Debug("mirror pushed", "collection", c.Collection, "id", c.ID, "version", c.Version, "deleted", c.Deleted)
}

// Run pushes queued changes and watches every registered collection until
// ctx is cancelled. Changes still queued at shutdown are flushed with a
// short grace period.
func (m *Mirror) Run(ctx context.Context) error {
	m.mu.Lock()
	stores := make(map[string]Store, len(m.stores))
	for k, v := range m.stores {
		stores[k] = v
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for collection, s := range stores {
		collection, s := collection, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.remote.Watch(ctx, collection, m.applier(ctx, collection, s)); err != nil {
				slog.Warn("mirror watch stopped", "collection", collection, "error", err)
			}
		}()
	}

	slog.Info("mirror started", "collections", len(stores))
	m.Flush(ctx)
	for {
		select {
		case <-ctx.Done():
			graceCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.Flush(graceCtx)
			cancel()
			wg.Wait()
			slog.Info("mirror stopped")
			return nil
		case <-m.wake:
			m.Flush(ctx)
		}
	}
}

// applier turns a watched collection into ApplyRemote calls, dropping the
// documents this mirror wrote itself.
func (m *Mirror) applier(ctx context.Context, collection string, s Store) remote.WatchFunc {
	return func(docs []remote.Document) {
		recs := make([]store.RemoteRecord, 0, len(docs))
		echoes := 0
		for _, d := range docs {
			if m.recent.has(d.OpID) {
				echoes++
				continue
			}
			recs = append(recs, store.RemoteRecord{
				ID:       d.ID,
				Deleted:  d.Deleted,
				Version:  d.Version,
				Modified: d.UpdatedAt,
				Payload:  d.Payload,
			})
		}
		metrics.RemoteDocs.WithLabelValues(collection, "echo").Add(float64(echoes))
		if len(recs) == 0 {
			return
		}

		applied, err := s.ApplyRemote(ctx, recs)
		if err != nil {
			slog.Warn("mirror apply failed", "collection", collection, "error", err)
		}
		metrics.RemoteDocs.WithLabelValues(collection, "applied").Add(float64(applied))
		metrics.RemoteDocs.WithLabelValues(collection, "stale").Add(float64(len(recs) - applied))
		if applied > 0 {
			slog.Info("mirror applied remote changes", "collection", collection, "applied", applied, "echoes", echoes)
		}
	}
}
