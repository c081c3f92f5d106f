// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package remote defines the shared document store that several
// pantrykeeper instances mirror their products, recipes and meal plans to.
// Documents are whole records keyed by collection and id; deletes are
// tombstones so that other instances learn about them.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidDocument is returned by Put for documents without a collection
// or id.
var ErrInvalidDocument = errors.New("remote: document needs a collection and an id")

// Document is one record in a remote collection.
type Document struct {
	Collection string          `db:"collection" json:"collection"`
	ID         string          `db:"id" json:"id"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	Version    int64           `db:"version" json:"version"`
	// OpID identifies the write that produced this state. The writer uses it
	// to recognise its own echoes.
	OpID      string    `db:"op_id" json:"opId"`
	Deleted   bool      `db:"deleted" json:"deleted"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (d Document) validate() error {
	if d.Collection == "" || d.ID == "" {
		return ErrInvalidDocument
	}
	return nil
}

// WatchFunc receives the full contents of a collection, tombstones
// included, whenever it changes.
type WatchFunc func(docs []Document)

// DocStore is a remote document store.
type DocStore interface {
	// Put creates or replaces a document.
	Put(ctx context.Context, doc Document) error
	// List returns every document of a collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	// Watch delivers the collection once immediately and again after every
	// change, until ctx is cancelled.
	Watch(ctx context.Context, collection string, fn WatchFunc) error
}
