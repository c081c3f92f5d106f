package remote

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutListWatch(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, m.Put(ctx, Document{Collection: "products", ID: "b", Payload: json.RawMessage(`{"name":"bread"}`), Version: 1}))

	var (
		mu    sync.Mutex
		calls [][]Document
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Watch(ctx, "products", func(docs []Document) {
			mu.Lock()
			calls = append(calls, docs)
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Put(ctx, Document{Collection: "products", ID: "a", Version: 1, Deleted: true}))
	require.NoError(t, m.Put(ctx, Document{Collection: "recipes", ID: "r", Version: 1}))

	mu.Lock()
	require.Len(t, calls, 2, "writes to other collections must not wake the watcher")
	latest := calls[1]
	mu.Unlock()
	require.Len(t, latest, 2)
	assert.Equal(t, "a", latest[0].ID)
	assert.True(t, latest[0].Deleted)
	assert.False(t, latest[0].UpdatedAt.IsZero())

	cancel()
	<-done

	docs, err := m.List(context.Background(), "products")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.ErrorIs(t, m.Put(context.Background(), Document{ID: "x"}), ErrInvalidDocument)
}

func newMockPostgres(t *testing.T, interval time.Duration) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, "postgres", interval), mock
}

func TestPostgresPut(t *testing.T) {
	p, mock := newMockPostgres(t, 0)
	at := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO documents \(collection,id,payload,version,op_id,deleted,updated_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7\) ON CONFLICT \(collection, id\) DO UPDATE SET`).
		WithArgs("products", "p1", []byte(`{"name":"milk"}`), int64(3), "op-1", false, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := p.Put(context.Background(), Document{
		Collection: "products",
		ID:         "p1",
		Payload:    json.RawMessage(`{"name":"milk"}`),
		Version:    3,
		OpID:       "op-1",
		UpdatedAt:  at,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutTombstone(t *testing.T) {
	p, mock := newMockPostgres(t, 0)
	mock.ExpectExec(`INSERT INTO documents`).
		WithArgs("mealPlan", "2026-02-28", []byte("null"), int64(4), "op-2", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, p.Put(context.Background(), Document{Collection: "mealPlan", ID: "2026-02-28", Version: 4, OpID: "op-2", Deleted: true}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func documentRows(at time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(documentColumns).
		AddRow("products", "p1", []byte(`{"name":"milk"}`), int64(2), "op-1", false, at).
		AddRow("products", "p2", []byte("null"), int64(5), "op-9", true, at)
}

func TestPostgresList(t *testing.T) {
	p, mock := newMockPostgres(t, 0)
	at := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT collection, id, payload, version, op_id, deleted, updated_at FROM documents WHERE collection = \$1 ORDER BY id`).
		WithArgs("products").
		WillReturnRows(documentRows(at))

	docs, err := p.List(context.Background(), "products")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p1", docs[0].ID)
	assert.JSONEq(t, `{"name":"milk"}`, string(docs[0].Payload))
	assert.Equal(t, int64(5), docs[1].Version)
	assert.True(t, docs[1].Deleted)
	assert.Equal(t, "op-9", docs[1].OpID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWatchReloadsOnlyOnChange(t *testing.T) {
	p, mock := newMockPostgres(t, 5*time.Millisecond)
	at := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	fpCols := []string{"n", "versions", "latest"}
	fpQuery := `SELECT COUNT\(\*\) AS n, COALESCE\(SUM\(version\), 0\) AS versions, MAX\(updated_at\) AS latest FROM documents WHERE collection = \$1`
	listQuery := `SELECT collection, id, payload, version, op_id, deleted, updated_at FROM documents`

	mock.ExpectQuery(fpQuery).WithArgs("products").WillReturnRows(sqlmock.NewRows(fpCols).AddRow(int64(2), int64(7), at))
	mock.ExpectQuery(listQuery).WithArgs("products").WillReturnRows(documentRows(at))
	mock.ExpectQuery(fpQuery).WithArgs("products").WillReturnRows(sqlmock.NewRows(fpCols).AddRow(int64(2), int64(7), at))
	mock.ExpectQuery(fpQuery).WithArgs("products").WillReturnRows(sqlmock.NewRows(fpCols).AddRow(int64(2), int64(8), at.Add(time.Second)))
	mock.ExpectQuery(listQuery).WithArgs("products").WillReturnRows(documentRows(at.Add(time.Second)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	deliveries := 0
	err := p.Watch(ctx, "products", func(docs []Document) {
		deliveries++
		assert.Len(t, docs, 2)
		if deliveries == 2 {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, deliveries)
	require.NoError(t, mock.ExpectationsWereMet())
}
