// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"encoding/json"
	"sync"
	"time"
)

// Collection names shared by change events and the remote mirror.
const (
	CollectionCategories = "categories"
	CollectionProducts   = "products"
	CollectionRecipes    = "recipes"
	CollectionMealPlan   = "mealPlan"
)

// Change describes one record mutation. Record is a copy of the new state
// and is nil when Deleted is set.
type Change struct {
	Collection string
	ID         string
	Deleted    bool
	Record     any
	Version    int64
	Modified   time.Time
	// Remote is set when the change was applied from the remote store, so
	// the mirror does not push it back.
	Remote bool
}

// Listener receives change events after the store lock is released.
type Listener func(Change)

type notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// Subscribe registers l for every future change of the store.
func (n *notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

func (n *notifier) emit(changes ...Change) {
	n.mu.RLock()
	ls := append([]Listener(nil), n.listeners...)
	n.mu.RUnlock()
	for _, c := range changes {
		for _, l := range ls {
			l(c)
		}
	}
}

// RemoteRecord is one document delivered by the remote store.
type RemoteRecord struct {
	ID       string
	Deleted  bool
	Version  int64
	Modified time.Time
	Payload  json.RawMessage
}

// newer reports whether the remote state wins over the local one under
// last-writer-wins: higher version first, later modification on a tie.
func newer(remoteVersion int64, remoteModified time.Time, localVersion int64, localModified time.Time) bool {
	if remoteVersion != localVersion {
		return remoteVersion > localVersion
	}
	return remoteModified.After(localModified)
}
