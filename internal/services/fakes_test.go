package services

import (
	"context"
	"io"
	"sync"

	"secondbrain-backend/internal/core"
	"secondbrain-backend/internal/models"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return string(data), nil
}

type fakeEmbedder struct {
	docErr   error
	queryErr error

	docCalls   int
	queryCalls int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.docCalls++
	if f.docErr != nil {
		return nil, f.docErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return []float32{float32(len(text)), 1}, nil
}

type fakeLLM struct {
	answer string
	err    error

	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeDB struct {
	mu        sync.Mutex
	docs      []models.Document
	createErr error
}

func (f *fakeDB) CreateUser(ctx context.Context, user *models.User) error { return nil }

func (f *fakeDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, core.ErrNotFound
}

func (f *fakeDB) CreateDocument(ctx context.Context, doc *models.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDB) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeObjectClient struct {
	mu        sync.Mutex
	stored    map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeObjectClient() *fakeObjectClient {
	return &fakeObjectClient{stored: make(map[string][]byte)}
}

func (f *fakeObjectClient) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[key] = b
	return "https://" + bucket + ".s3.test.amazonaws.com/" + key, nil
}

func (f *fakeObjectClient) DeleteFile(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectClient) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.stored[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return b, nil
}

// failingVectorStore wraps another store and fails writes.
type failingVectorStore struct {
	core.VectorStore
	upsertErr error
}

func (f *failingVectorStore) Upsert(ctx context.Context, records []core.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorStore.Upsert(ctx, records)
}
