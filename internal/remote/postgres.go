// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package remote

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const documentsTable = "documents"

// DefaultPollInterval is used when NewPostgres is given a zero interval.
const DefaultPollInterval = 5 * time.Second

var documentColumns = []string{"collection", "id", "payload", "version", "op_id", "deleted", "updated_at"}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Postgres stores documents in the goose-managed documents table. Watch
// polls a per-collection fingerprint and reloads the collection when it
// moves.
type Postgres struct {
	db       *sqlx.DB
	interval time.Duration
	now      func() time.Time
}

// NewPostgres wraps an open pool. driverName is the database/sql driver the
// pool was opened with ("pgx" in production).
func NewPostgres(db *sql.DB, driverName string, interval time.Duration) *Postgres {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Postgres{db: sqlx.NewDb(db, driverName), interval: interval, now: time.Now}
}

func (p *Postgres) Put(ctx context.Context, doc Document) error {
	if err := doc.validate(); err != nil {
		return err
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = p.now().UTC()
	}
	payload := []byte(doc.Payload)
	if len(payload) == 0 {
		payload = []byte("null")
	}

	query, args, err := psql.Insert(documentsTable).
		Columns(documentColumns...).
		Values(doc.Collection, doc.ID, payload, doc.Version, doc.OpID, doc.Deleted, doc.UpdatedAt).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET " +
			"payload = EXCLUDED.payload, version = EXCLUDED.version, op_id = EXCLUDED.op_id, " +
			"deleted = EXCLUDED.deleted, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", doc.Collection, doc.ID, err)
	}
	return nil
}

type documentRow struct {
	Collection string    `db:"collection"`
	ID         string    `db:"id"`
	Payload    []byte    `db:"payload"`
	Version    int64     `db:"version"`
	OpID       string    `db:"op_id"`
	Deleted    bool      `db:"deleted"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	query, args, err := psql.Select(documentColumns...).
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	var rows []documentRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = Document{
			Collection: r.Collection,
			ID:         r.ID,
			Payload:    r.Payload,
			Version:    r.Version,
			OpID:       r.OpID,
			Deleted:    r.Deleted,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return docs, nil
}

// fingerprint changes whenever a document of the collection is written.
type fingerprint struct {
	Count    int64        `db:"n"`
	Versions int64        `db:"versions"`
	Latest   sql.NullTime `db:"latest"`
}

func (f fingerprint) equal(o fingerprint) bool {
	return f.Count == o.Count && f.Versions == o.Versions &&
		f.Latest.Valid == o.Latest.Valid && f.Latest.Time.Equal(o.Latest.Time)
}

func (p *Postgres) fingerprint(ctx context.Context, collection string) (fingerprint, error) {
	query, args, err := psql.Select("COUNT(*) AS n", "COALESCE(SUM(version), 0) AS versions", "MAX(updated_at) AS latest").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		ToSql()
	if err != nil {
		return fingerprint{}, fmt.Errorf("build fingerprint: %w", err)
	}
	var fp fingerprint
	if err := p.db.GetContext(ctx, &fp, query, args...); err != nil {
		return fingerprint{}, fmt.Errorf("fingerprint %s: %w", collection, err)
	}
	return fp, nil
}

// Watch polls until ctx is done. Poll failures are logged and retried on
// the next tick.
func (p *Postgres) Watch(ctx context.Context, collection string, fn WatchFunc) error {
	var (
		last      fingerprint
		delivered bool
	)
	poll := func() {
		fp, err := p.fingerprint(ctx, collection)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("remote poll failed", "collection", collection, "error", err)
			}
			return
		}
		if delivered && fp.equal(last) {
			return
		}
		docs, err := p.List(ctx, collection)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("remote reload failed", "collection", collection, "error", err)
			}
			return
		}
		last, delivered = fp, true
		fn(docs)
	}

	poll()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			poll()
		}
	}
}
