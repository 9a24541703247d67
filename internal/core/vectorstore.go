package core

import "context"

// ChunkMetadata is the payload attached to every stored vector. The JSON keys
// are a compatibility contract with data written by earlier deployments and
// must be preserved verbatim.
type ChunkMetadata struct {
	Text       string `json:"text"`
	Filename   string `json:"filename"`
	Page       int    `json:"page"` // always 1: the chunker does not track page boundaries
	User       string `json:"user"`
	DocumentID string `json:"documentId"`
}

// VectorRecord is one embedded chunk ready for upsert, identified by
// {documentKeyPrefix}_{chunkIndex}.
type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata ChunkMetadata
}

// Match is one similarity-search result.
type Match struct {
	ID       string
	Score    float32
	Metadata ChunkMetadata
}

// VectorStore wraps the external similarity index. Query takes the tenant id
// as a mandatory argument so that an unscoped read is unrepresentable; a
// non-empty documentID narrows the filter further (logical AND). Upsert is
// idempotent by record id.
type VectorStore interface {
	Upsert(ctx context.Context, records []VectorRecord) error
	Query(ctx context.Context, tenantID string, embedding []float32, documentID string, topK int) ([]Match, error)
}
