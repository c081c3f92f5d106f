// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package mirror

import "sync"

// opLog is a bounded set of recent op-ids. The oldest id is forgotten when
// the ring is full.
type opLog struct {
	mu   sync.Mutex
	ring []string
	next int
	set  map[string]struct{}
}

func newOpLog(size int) *opLog {
	return &opLog{ring: make([]string, size), set: make(map[string]struct{}, size)}
}

func (l *opLog) add(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if old := l.ring[l.next]; old != "" {
		delete(l.set, old)
	}
	l.ring[l.next] = id
	l.set[id] = struct{}{}
	l.next = (l.next + 1) % len(l.ring)
}

func (l *opLog) has(id string) bool {
	if id == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.set[id]
	return ok
}
