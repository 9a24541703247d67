package vectorstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain-backend/internal/core"
)

func TestPGStoreQueryFiltersByTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "text", "filename", "page", "user_id", "document_id", "score"}).
		AddRow("key_0", "chunk text", "notes.pdf", 1, "tenant-a", "key", 0.92)

	mock.ExpectQuery(`SELECT id, text, filename, page, user_id, document_id, 1 - \(embedding <=> \$1\) AS score\s+FROM vector_records\s+WHERE user_id = \$2\s+ORDER BY embedding <=> \$1\s+LIMIT \$3`).
		WithArgs(sqlmock.AnyArg(), "tenant-a", 5).
		WillReturnRows(rows)

	store := NewPGStore(db)
	matches, err := store.Query(context.Background(), "tenant-a", []float32{0.1, 0.2}, "", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "key_0", matches[0].ID)
	assert.InDelta(t, 0.92, float64(matches[0].Score), 1e-6)
	assert.Equal(t, "tenant-a", matches[0].Metadata.User)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreQueryNarrowsToDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE user_id = \$2 AND document_id = \$3`).
		WithArgs(sqlmock.AnyArg(), "tenant-a", "doc-key", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "filename", "page", "user_id", "document_id", "score"}))

	store := NewPGStore(db)
	matches, err := store.Query(context.Background(), "tenant-a", []float32{0.1}, "doc-key", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreQueryRequiresTenant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPGStore(db)
	_, err = store.Query(context.Background(), "", []float32{0.1}, "", 5)
	require.ErrorIs(t, err, core.ErrVectorStore)
	// No SQL may be issued for an unscoped query.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreUpsertWritesAllRecordsInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vector_records .+ ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("key_0", sqlmock.AnyArg(), "first", "notes.pdf", 1, "tenant-a", "key").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO vector_records .+ ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("key_1", sqlmock.AnyArg(), "second", "notes.pdf", 1, "tenant-a", "key").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewPGStore(db)
	err = store.Upsert(context.Background(), []core.VectorRecord{
		{ID: "key_0", Values: []float32{1}, Metadata: core.ChunkMetadata{Text: "first", Filename: "notes.pdf", Page: 1, User: "tenant-a", DocumentID: "key"}},
		{ID: "key_1", Values: []float32{2}, Metadata: core.ChunkMetadata{Text: "second", Filename: "notes.pdf", Page: 1, User: "tenant-a", DocumentID: "key"}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStoreUpsertRejectsUntaggedRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	store := NewPGStore(db)
	err = store.Upsert(context.Background(), []core.VectorRecord{
		{ID: "key_0", Values: []float32{1}, Metadata: core.ChunkMetadata{Text: "orphan"}},
	})
	require.ErrorIs(t, err, core.ErrVectorStore)
	assert.NoError(t, mock.ExpectationsWereMet())
}
