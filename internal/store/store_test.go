package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/hoshin/hoshintest"
)

// testRepositoryContract exercises the behaviour every backend shares.
func testRepositoryContract(t *testing.T, open func(t *testing.T) Repository) {
	t.Run("missing id is nil", func(t *testing.T) {
		r := open(t)
		got, err := r.GetByID(context.Background(), "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("round trip", func(t *testing.T) {
		r := open(t)
		ctx := context.Background()
		doc := hoshintest.Complete("Plan")
		doc.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		doc.CreatedAt = doc.UpdatedAt

		require.NoError(t, r.Upsert(ctx, doc))
		got, err := r.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, doc, *got)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		r := open(t)
		ctx := context.Background()
		doc := hoshintest.Ready("Plan")
		require.NoError(t, r.Upsert(ctx, doc))

		doc, err := hoshin.SetConnectionDirection(doc, "s1-s2", hoshin.S2, hoshin.S1)
		require.NoError(t, err)
		doc = hoshin.Rename(doc, "Renamed")
		require.NoError(t, r.Upsert(ctx, doc))

		all, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Renamed", all[0].Name)
		assert.Equal(t, &hoshin.Direction{From: hoshin.S2, To: hoshin.S1}, all[0].DirectionFor(hoshin.S1, hoshin.S2))
	})

	t.Run("list and delete", func(t *testing.T) {
		r := open(t)
		ctx := context.Background()
		a, b := hoshin.NewDocument("A"), hoshin.NewDocument("B")
		require.NoError(t, r.Upsert(ctx, a))
		require.NoError(t, r.Upsert(ctx, b))

		all, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, r.Delete(ctx, a.ID))
		require.NoError(t, r.Delete(ctx, "unknown"))
		all, err = r.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, b.ID, all[0].ID)

		got, err := r.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		r := open(t)
		doc := hoshin.NewDocument("x")
		doc.ID = ""
		assert.Error(t, r.Upsert(context.Background(), doc))
	})

	t.Run("stored copy is isolated", func(t *testing.T) {
		r := open(t)
		ctx := context.Background()
		doc := hoshintest.Ready("x")
		require.NoError(t, r.Upsert(ctx, doc))
		doc.Statements[0].Text = "changed after save"

		got, err := r.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, hoshintest.Texts[0], got.Statements[0].Text)
	})
}

// ---------------------------------------------------------------------------
// Backends
// ---------------------------------------------------------------------------

func TestMemStore(t *testing.T) {
	testRepositoryContract(t, func(t *testing.T) Repository {
		return NewMemStore()
	})
}

func TestBadgerStore(t *testing.T) {
	testRepositoryContract(t, func(t *testing.T) Repository {
		t.Helper()
		s, err := NewBadgerStore(BadgerConfig{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	doc := hoshintest.Complete("Persisted")

	s, err := NewBadgerStore(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, doc))
	require.NoError(t, s.Close())

	s, err = NewBadgerStore(BadgerConfig{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Persisted", got.Name)
	assert.True(t, hoshin.CanCalculate(*got))
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerStore(BadgerConfig{})
	assert.Error(t, err)
}

func TestBadgerStore_CanceledContext(t *testing.T) {
	s, err := NewBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	r, err := Open(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemStore{}, r)

	r, err = Open(Config{Backend: BackendBadger, InMemory: true})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, r)
	require.NoError(t, r.Close())

	_, err = Open(Config{Backend: "postgres"})
	assert.Error(t, err)
}
