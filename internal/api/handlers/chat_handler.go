package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	middleware "secondbrain-backend/internal/api/middlewares"
	"secondbrain-backend/internal/core"
	"secondbrain-backend/internal/models"
	"secondbrain-backend/internal/services"
)

// Chatter is the slice of the chat service the chat endpoint needs.
type Chatter interface {
	Answer(ctx context.Context, tenantID, question, documentID string, history []models.ChatMessage) (*services.ChatResult, error)
}

type ChatHandler struct {
	chatter Chatter
}

func NewChatHandler(chatter Chatter) *ChatHandler {
	return &ChatHandler{chatter: chatter}
}

type chatRequest struct {
	Question   string               `json:"question"`
	History    []models.ChatMessage `json:"history"`
	DocumentID string               `json:"documentId"`
}

// Chat answers a question over the caller's indexed documents, optionally
// scoped to one document.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	res, err := h.chatter.Answer(r.Context(), userID, req.Question, req.DocumentID, req.History)
	if err != nil {
		log.Printf("[Chat] Error: %v", err)
		switch {
		case errors.Is(err, core.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "Question is required")
		case core.IsRateLimited(err) && core.RateLimitPhase(err) == "generation":
			writeError(w, http.StatusTooManyRequests, "Too many requests to Gemini API (Generation). Please wait a moment and try again.")
		case core.IsRateLimited(err):
			writeError(w, http.StatusTooManyRequests, "Too many requests to Gemini API (Embedding). Please wait a moment and try again.")
		default:
			writeError(w, http.StatusInternalServerError, "Error generating response")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":  res.Answer,
		"sources": res.Sources,
	})
}
