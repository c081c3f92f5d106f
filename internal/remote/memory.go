// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package remote

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process DocStore. Watchers are called synchronously from
// Put, which makes it convenient in tests and for single-node setups.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]map[string]Document
	watchers map[string]map[int]WatchFunc
	nextID   int
	now      func() time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]map[string]Document),
		watchers: make(map[string]map[int]WatchFunc),
		now:      time.Now,
	}
}

func (m *Memory) Put(_ context.Context, doc Document) error {
	if err := doc.validate(); err != nil {
		return err
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = m.now()
	}
	doc.Payload = append([]byte(nil), doc.Payload...)

	m.mu.Lock()
	coll, ok := m.docs[doc.Collection]
	if !ok {
		coll = make(map[string]Document)
		m.docs[doc.Collection] = coll
	}
	coll[doc.ID] = doc
	snapshot := m.listLocked(doc.Collection)
	fns := make([]WatchFunc, 0, len(m.watchers[doc.Collection]))
	for _, fn := range m.watchers[doc.Collection] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
	return nil
}

func (m *Memory) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(collection), nil
}

func (m *Memory) listLocked(collection string) []Document {
	out := make([]Document, 0, len(m.docs[collection]))
	for _, d := range m.docs[collection] {
		d.Payload = append([]byte(nil), d.Payload...)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Watch registers fn, delivers the current contents and blocks until ctx
// is done.
func (m *Memory) Watch(ctx context.Context, collection string, fn WatchFunc) error {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	if m.watchers[collection] == nil {
		m.watchers[collection] = make(map[int]WatchFunc)
	}
	m.watchers[collection][id] = fn
	snapshot := m.listLocked(collection)
	m.mu.Unlock()

	fn(snapshot)
	<-ctx.Done()

	m.mu.Lock()
	delete(m.watchers[collection], id)
	m.mu.Unlock()
	return nil
}
