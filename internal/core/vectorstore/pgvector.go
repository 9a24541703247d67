package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"secondbrain-backend/internal/core"
)

var _ core.VectorStore = (*PGStore)(nil)

// PGStore persists embeddings in a pgvector table. Every row carries the
// owning tenant and Query always filters on it; the tenant column is the sole
// isolation mechanism, so writes without one are rejected.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Upsert writes records idempotently by id: re-upserting an id overwrites.
// All records land or none do.
func (s *PGStore) Upsert(ctx context.Context, records []core.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", core.ErrVectorStore, err)
	}

	const q = `
		INSERT INTO vector_records (id, embedding, text, filename, page, user_id, document_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			text = EXCLUDED.text,
			filename = EXCLUDED.filename,
			page = EXCLUDED.page,
			user_id = EXCLUDED.user_id,
			document_id = EXCLUDED.document_id
	`
	for _, rec := range records {
		if rec.Metadata.User == "" {
			_ = tx.Rollback()
			return fmt.Errorf("%w: record %s has no tenant", core.ErrVectorStore, rec.ID)
		}
		if _, err := tx.ExecContext(ctx, q,
			rec.ID, pgvector.NewVector(rec.Values),
			rec.Metadata.Text, rec.Metadata.Filename, rec.Metadata.Page,
			rec.Metadata.User, rec.Metadata.DocumentID,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: upsert %s: %v", core.ErrVectorStore, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", core.ErrVectorStore, err)
	}
	return nil
}

// Query returns the topK most similar records for the tenant, best first.
// Score is cosine similarity.
func (s *PGStore) Query(ctx context.Context, tenantID string, embedding []float32, documentID string, topK int) ([]core.Match, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", core.ErrVectorStore)
	}
	if topK <= 0 {
		topK = 5
	}

	vec := pgvector.NewVector(embedding)

	var (
		rows *sql.Rows
		err  error
	)
	if documentID != "" {
		const q = `
			SELECT id, text, filename, page, user_id, document_id, 1 - (embedding <=> $1) AS score
			FROM vector_records
			WHERE user_id = $2 AND document_id = $3
			ORDER BY embedding <=> $1
			LIMIT $4
		`
		rows, err = s.db.QueryContext(ctx, q, vec, tenantID, documentID, topK)
	} else {
		const q = `
			SELECT id, text, filename, page, user_id, document_id, 1 - (embedding <=> $1) AS score
			FROM vector_records
			WHERE user_id = $2
			ORDER BY embedding <=> $1
			LIMIT $3
		`
		rows, err = s.db.QueryContext(ctx, q, vec, tenantID, topK)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", core.ErrVectorStore, err)
	}
	defer rows.Close()

	var out []core.Match
	for rows.Next() {
		var (
			m     core.Match
			score float64
		)
		if err := rows.Scan(&m.ID, &m.Metadata.Text, &m.Metadata.Filename, &m.Metadata.Page,
			&m.Metadata.User, &m.Metadata.DocumentID, &score); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", core.ErrVectorStore, err)
		}
		m.Score = float32(score)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", core.ErrVectorStore, err)
	}
	return out, nil
}
