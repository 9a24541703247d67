package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	middleware "secondbrain-backend/internal/api/middlewares"
	"secondbrain-backend/internal/core"
	"secondbrain-backend/internal/models"
	"secondbrain-backend/internal/services"
)

const maxUploadBytes = 50 << 20

// Ingestor is the slice of the ingest service the upload endpoints need.
type Ingestor interface {
	Ingest(ctx context.Context, in services.IngestInput) (*services.IngestResult, error)
	ListDocuments(ctx context.Context, tenantID string) ([]models.Document, error)
}

type DocumentHandler struct {
	ingestor Ingestor
}

func NewDocumentHandler(ingestor Ingestor) *DocumentHandler {
	return &DocumentHandler{ingestor: ingestor}
}

// UploadDocument runs the full synchronous pipeline: archive, extract, chunk,
// embed, index. The response carries the chunk count and the document id used
// to scope later chat queries.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error processing file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	res, err := h.ingestor.Ingest(r.Context(), services.IngestInput{
		Data:        data,
		TenantID:    userID,
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
		StorageKey:  uuid.NewString(),
	})
	if err != nil {
		log.Printf("[Upload] Error: %v", err)
		switch {
		case errors.Is(err, core.ErrNoFile):
			writeError(w, http.StatusBadRequest, "No file uploaded")
		case core.IsRateLimited(err):
			writeError(w, http.StatusTooManyRequests, "Too many requests to Gemini API (Embedding). Please wait a moment and try again.")
		default:
			writeError(w, http.StatusInternalServerError, "Error processing file")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "File processed and embedded successfully",
		"chunks":     res.Chunks,
		"filename":   res.Filename,
		"documentId": res.DocumentID,
	})
}

// GetDocuments lists the caller's documents, newest first.
func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	documents, err := h.ingestor.ListDocuments(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching documents")
		return
	}

	writeJSON(w, http.StatusOK, documents)
}
