package models

import (
	"time"
)

// User represents an authenticated user of the system. Each user is a tenant:
// uploaded documents and retrievals are isolated per user id.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Document represents one successfully ingested file. Created only after all
// of the file's vectors are written; never mutated afterwards.
type Document struct {
	ID       string `db:"id" json:"id"`
	UserID   string `db:"user_id" json:"-"`
	Filename string `db:"filename" json:"filename"`
	FileType string `db:"file_type" json:"fileType"`
	Size     int64  `db:"size_bytes" json:"size"`

	// VectorKeyPrefix is the per-upload storage key; vector ids are derived
	// as {prefix}_{chunkIndex}. Exposed as documentId so clients can scope
	// chat requests to this document.
	VectorKeyPrefix string `db:"vector_key_prefix" json:"documentId"`

	// StorageURL points at the archived original in object storage.
	StorageURL string    `db:"storage_url" json:"storageUrl,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Source is one citation attached to an answer: the source document and the
// similarity score of its best-matching chunk.
type Source struct {
	Filename string  `json:"filename"`
	Score    float32 `json:"score"`
}

// ChatMessage is one turn of a client-side conversation. Accepted in chat
// requests for forward compatibility; the server keeps no history and does
// not forward it to the model.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
