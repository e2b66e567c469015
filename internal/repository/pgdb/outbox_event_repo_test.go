package pgdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func TestCreateRequiresTransaction(t *testing.T) {
	repo := NewOutboxEventRepo(newMockPool(t))

	_, err := repo.Create(context.Background(), usecase.NewOutboxEvent("ev", usecase.ProductCreated, "p1", nil, time.Now()))
	assert.ErrorIs(t, err, e.ErrTransactionNotFound)
}

func TestCreateInsertsAndNotifies(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxEventRepo(pool)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	pool.ExpectBegin()
	pool.ExpectQuery("INSERT INTO outbox_events").
		WithArgs("ev-1", "product.created", "p1", []byte(`{"a":1}`), "pending", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))
	pool.ExpectExec("NOTIFY outbox_pending").WillReturnResult(pgxmock.NewResult("NOTIFY", 0))
	pool.ExpectCommit()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	created, err := repo.Create(tr.WithTx(ctx, tx), usecase.NewOutboxEvent("ev-1", usecase.ProductCreated, "p1", []byte(`{"a":1}`), now))
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, usecase.Pending, created.Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestCreateDuplicateEvent(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxEventRepo(pool)

	pool.ExpectBegin()
	pool.ExpectQuery("INSERT INTO outbox_events").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	_, err = repo.Create(tr.WithTx(ctx, tx), usecase.NewOutboxEvent("ev-1", usecase.ProductDeleted, "p1", nil, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGetAndMarkAsProcessing(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxEventRepo(pool)
	now := time.Now()

	pool.ExpectBegin()
	pool.ExpectQuery("UPDATE outbox_events").
		WithArgs("processing", "pending", 10, "1m0s").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "event_id", "event_type", "product_id", "payload", "status", "created_at", "processed_at",
		}).
			AddRow(int64(1), "ev-1", "product.updated", "p1", []byte(`{}`), "processing", now, (*time.Time)(nil)).
			AddRow(int64(2), "ev-2", "product.deleted", "p2", []byte(`{}`), "processing", now, (*time.Time)(nil)))
	pool.ExpectCommit()

	events, err := repo.GetAndMarkAsProcessing(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, usecase.ProductUpdated, events[0].EventType)
	assert.Equal(t, "p2", events[1].ProductID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestGetAndMarkAsProcessingRollsBack(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxEventRepo(pool)

	pool.ExpectBegin()
	pool.ExpectQuery("UPDATE outbox_events").WillReturnError(errors.New("conn reset"))
	pool.ExpectRollback()

	_, err := repo.GetAndMarkAsProcessing(context.Background(), 5)
	require.Error(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestMarkAsProcessedAndFailed(t *testing.T) {
	pool := newMockPool(t)
	repo := NewOutboxEventRepo(pool)

	pool.ExpectExec("UPDATE outbox_events").
		WithArgs("processed", int64(7), "processing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec("UPDATE outbox_events").
		WithArgs("failed", int64(8), "processing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.MarkAsProcessed(context.Background(), 7))
	require.NoError(t, repo.MarkAsFailed(context.Background(), 8))
	assert.NoError(t, pool.ExpectationsWereMet())
}
