package rounds

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	st := NewStore(newTestDB(t))
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.Record(ctx, Result{SessionID: "a", Round: 1, Attempts: 5, FinishedAt: at}))
	require.NoError(t, st.Record(ctx, Result{SessionID: "a", Round: 2, Attempts: 3, FinishedAt: at.Add(time.Minute)}))
	require.NoError(t, st.Record(ctx, Result{SessionID: "b", Round: 1, Attempts: 1, FinishedAt: at}))

	got, err := st.List(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Round)
	assert.Equal(t, 3, got[0].Attempts)
	assert.True(t, at.Add(time.Minute).Equal(got[0].FinishedAt))
	assert.Equal(t, 1, got[1].Round)

	got, err = st.List(ctx, "a", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = st.List(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_RecordDuplicateIgnored(t *testing.T) {
	ctx := context.Background()
	st := NewStore(newTestDB(t))

	require.NoError(t, st.Record(ctx, Result{SessionID: "a", Round: 1, Attempts: 4}))
	require.NoError(t, st.Record(ctx, Result{SessionID: "a", Round: 1, Attempts: 9}))

	got, err := st.List(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Attempts)
	assert.False(t, got[0].FinishedAt.IsZero())
}

func TestStore_RecordRejectsZeroAttempts(t *testing.T) {
	st := NewStore(newTestDB(t))
	assert.ErrorIs(t, st.Record(context.Background(), Result{SessionID: "a", Round: 1, Attempts: 0}), ErrInvalidResult)
	assert.ErrorIs(t, st.Record(context.Background(), Result{Round: 1, Attempts: 2}), ErrInvalidResult)
}

func TestStore_Best(t *testing.T) {
	ctx := context.Background()
	st := NewStore(newTestDB(t))

	_, ok, err := st.Best(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	for i, attempts := range []int{5, 3, 8} {
		require.NoError(t, st.Record(ctx, Result{SessionID: "a", Round: i + 1, Attempts: attempts}))
	}
	best, ok, err := st.Best(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, best)
}

func TestStore_DeleteSession(t *testing.T) {
	ctx := context.Background()
	st := NewStore(newTestDB(t))
	require.NoError(t, st.Record(ctx, Result{SessionID: "a", Round: 1, Attempts: 2}))
	require.NoError(t, st.Record(ctx, Result{SessionID: "b", Round: 1, Attempts: 2}))

	require.NoError(t, st.DeleteSession(ctx, "a"))

	got, err := st.List(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = st.List(ctx, "b", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
