package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain-backend/internal/core"
)

func record(id, tenant, doc string, values []float32) core.VectorRecord {
	return core.VectorRecord{
		ID:     id,
		Values: values,
		Metadata: core.ChunkMetadata{
			Text:       "text " + id,
			Filename:   doc + ".pdf",
			Page:       1,
			User:       tenant,
			DocumentID: doc,
		},
	}
}

func TestMemoryStoreTenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, []core.VectorRecord{
		record("a_0", "tenant-a", "doc-a", []float32{1, 0}),
		record("b_0", "tenant-b", "doc-b", []float32{1, 0}),
	}))

	matches, err := store.Query(ctx, "tenant-a", []float32{1, 0}, "", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "tenant-a", matches[0].Metadata.User)

	// Scoping to another tenant's document must not leak anything: the
	// tenant filter still applies.
	matches, err = store.Query(ctx, "tenant-a", []float32{1, 0}, "doc-b", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryStoreRequiresTenant(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Query(context.Background(), "", []float32{1}, "", 5)
	require.ErrorIs(t, err, core.ErrVectorStore)
}

func TestMemoryStoreUpsertIdempotentByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, []core.VectorRecord{record("k_0", "t", "d", []float32{1, 0})}))
	updated := record("k_0", "t", "d", []float32{0, 1})
	updated.Metadata.Text = "rewritten"
	require.NoError(t, store.Upsert(ctx, []core.VectorRecord{updated}))

	assert.Equal(t, 1, store.Len())
	matches, err := store.Query(ctx, "t", []float32{0, 1}, "", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "rewritten", matches[0].Metadata.Text)
}

func TestMemoryStoreOrdersByDescendingScore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Upsert(ctx, []core.VectorRecord{
		record("far_0", "t", "d", []float32{0, 1}),
		record("near_0", "t", "d", []float32{1, 0.05}),
		record("mid_0", "t", "d", []float32{1, 1}),
	}))

	matches, err := store.Query(ctx, "t", []float32{1, 0}, "", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "near_0", matches[0].ID)
	assert.Equal(t, "mid_0", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryStoreRejectsUntaggedRecords(t *testing.T) {
	store := NewMemoryStore()
	rec := record("x_0", "", "d", []float32{1})
	err := store.Upsert(context.Background(), []core.VectorRecord{rec})
	require.ErrorIs(t, err, core.ErrVectorStore)
}
