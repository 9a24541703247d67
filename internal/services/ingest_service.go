package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"secondbrain-backend/internal/core"
	"secondbrain-backend/internal/core/chunker"
	"secondbrain-backend/internal/models"
)

// IngestService turns an uploaded file into searchable vectors:
// archive -> extract -> chunk -> embed -> tag -> upsert -> document record.
// Persistence is strictly last: if any earlier step fails, nothing is kept
// and the archived object is removed.
type IngestService struct {
	db       core.DbClient
	obj      core.ObjectClient
	extract  core.TextExtractor
	embedder core.EmbeddingProvider
	vectors  core.VectorStore
	splitter *chunker.Splitter
	bucket   string
}

func NewIngestService(
	db core.DbClient,
	obj core.ObjectClient,
	extract core.TextExtractor,
	embedder core.EmbeddingProvider,
	vectors core.VectorStore,
	splitter *chunker.Splitter,
	bucket string,
) *IngestService {
	return &IngestService{
		db: db, obj: obj, extract: extract, embedder: embedder,
		vectors: vectors, splitter: splitter, bucket: bucket,
	}
}

// IngestInput describes one validated upload.
type IngestInput struct {
	Data        []byte
	TenantID    string
	Filename    string
	ContentType string
	Size        int64

	// StorageKey is unique per upload; vector ids are {StorageKey}_{index},
	// so concurrent uploads never collide.
	StorageKey string
}

type IngestResult struct {
	Chunks     int    `json:"chunks"`
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
}

func (s *IngestService) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	if len(in.Data) == 0 {
		return nil, core.ErrNoFile
	}
	if in.TenantID == "" || in.StorageKey == "" {
		return nil, fmt.Errorf("ingest: tenant id and storage key are required")
	}

	objectKey := s.objectKey(in.TenantID, in.StorageKey, in.Filename)
	url, err := s.obj.UploadFile(ctx, s.bucket, objectKey, bytes.NewReader(in.Data), in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("archive upload: %w", err)
	}

	log.Printf("[Upload] Extracting text from %s...", in.Filename)
	text, err := s.extract.Extract(ctx, in.Data, in.ContentType)
	if err != nil {
		s.discardArchive(objectKey)
		return nil, err
	}

	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		s.discardArchive(objectKey)
		return nil, fmt.Errorf("%w: document produced no chunks", core.ErrExtraction)
	}

	log.Printf("[Upload] Generating embeddings for %d chunks...", len(chunks))
	vecs, err := s.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		s.discardArchive(objectKey)
		return nil, err
	}
	if len(vecs) != len(chunks) {
		s.discardArchive(objectKey)
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", core.ErrEmbedding, len(vecs), len(chunks))
	}

	records := make([]core.VectorRecord, len(chunks))
	for i, chunkText := range chunks {
		records[i] = core.VectorRecord{
			ID:     fmt.Sprintf("%s_%d", in.StorageKey, i),
			Values: vecs[i],
			Metadata: core.ChunkMetadata{
				Text:       chunkText,
				Filename:   in.Filename,
				Page:       1,
				User:       in.TenantID,
				DocumentID: in.StorageKey,
			},
		}
	}

	log.Printf("[Upload] Upserting %d vectors...", len(records))
	if err := s.vectors.Upsert(ctx, records); err != nil {
		s.discardArchive(objectKey)
		return nil, err
	}

	doc := &models.Document{
		ID:              uuid.NewString(),
		UserID:          in.TenantID,
		Filename:        in.Filename,
		FileType:        in.ContentType,
		Size:            in.Size,
		VectorKeyPrefix: in.StorageKey,
		StorageURL:      url,
		CreatedAt:       time.Now(),
	}
	if err := s.db.CreateDocument(ctx, doc); err != nil {
		// Vectors are already written; surface the failure loudly instead of
		// pretending the ingestion succeeded.
		log.Printf("[Upload] Document record failed after upsert, key=%s: %v", in.StorageKey, err)
		s.discardArchive(objectKey)
		return nil, fmt.Errorf("store document record: %w", err)
	}

	return &IngestResult{
		Chunks:     len(chunks),
		DocumentID: in.StorageKey,
		Filename:   in.Filename,
	}, nil
}

// ListDocuments returns the tenant's ingested documents, newest first.
func (s *IngestService) ListDocuments(ctx context.Context, tenantID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, tenantID)
}

// discardArchive removes the uploaded object after a failed ingestion. The
// request context may already be canceled, so cleanup gets its own deadline.
func (s *IngestService) discardArchive(objectKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.obj.DeleteFile(ctx, s.bucket, objectKey); err != nil {
		log.Printf("[Upload] Cleanup of %s failed: %v", objectKey, err)
	}
}

// objectKey builds a consistent storage layout for archived originals.
func (s *IngestService) objectKey(tenantID, storageKey, filename string) string {
	filename = strings.ReplaceAll(strings.TrimSpace(filename), " ", "_")
	return path.Join("users", tenantID, "documents", storageKey, filename)
}
