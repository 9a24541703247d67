package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"secondbrain-backend/internal/core"
	"secondbrain-backend/internal/models"
)

// systemPrompt is the fixed "Second Brain" persona with its formatting rules
// and the graceful fallback wording for questions the context cannot answer.
const systemPrompt = `You are a helpful AI assistant called "Second Brain". Use the following context to answer the user's question.

Formatting Instructions:
- Use simple, clear, and professional language.
- Structure your answer with **Bold Headers** for key sections.
- Use **bullet points** or **numbered lists** for steps or features to improve readability.
- Important terms or numbers should be **bolded**.
- If the answer is long, break it into concise paragraphs.

If the answer is not in the context, say "I couldn't find the answer in your documents." and then try to answer from your general knowledge but mention that it is general knowledge.`

// ChatService answers questions from the tenant's ingested documents:
// embed question -> tenant-scoped similarity search -> context assembly ->
// one generation call -> deduplicated citations.
type ChatService struct {
	embedder core.EmbeddingProvider
	vectors  core.VectorStore
	llm      core.LLMProvider
	topK     int
}

func NewChatService(embedder core.EmbeddingProvider, vectors core.VectorStore, llm core.LLMProvider, topK int) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{embedder: embedder, vectors: vectors, llm: llm, topK: topK}
}

type ChatResult struct {
	Answer  string          `json:"answer"`
	Sources []models.Source `json:"sources"`
}

// Answer runs the retrieval pipeline for one question. documentID optionally
// narrows retrieval to one of the tenant's documents; history is accepted for
// API compatibility but the pipeline is stateless and does not forward it.
func (s *ChatService) Answer(ctx context.Context, tenantID, question, documentID string, history []models.ChatMessage) (*ChatResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, core.ErrEmptyQuestion
	}
	if tenantID == "" {
		return nil, fmt.Errorf("chat: tenant id is required")
	}
	_ = history

	log.Printf("[Chat] Generating embedding for question...")
	queryVec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.vectors.Query(ctx, tenantID, queryVec, documentID, s.topK)
	if err != nil {
		return nil, err
	}
	log.Printf("[Chat] Found %d matches.", len(matches))

	log.Printf("[Chat] Generating answer...")
	answer, err := s.llm.Generate(ctx, systemPrompt, buildUserPrompt(assembleContext(matches), question))
	if err != nil {
		return nil, err
	}

	return &ChatResult{Answer: answer, Sources: dedupeSources(matches)}, nil
}

// assembleContext concatenates matches in descending-similarity order, each
// tagged with its source filename so answers stay traceable to documents.
func assembleContext(matches []core.Match) string {
	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "\n\n---\nSource: %s\nContent: %s", m.Metadata.Filename, m.Metadata.Text)
	}
	return b.String()
}

func buildUserPrompt(contextBlock, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer:", contextBlock, question)
}

// dedupeSources keeps one citation per filename: first-seen order, and the
// first (highest) score wins.
func dedupeSources(matches []core.Match) []models.Source {
	seen := make(map[string]struct{}, len(matches))
	out := make([]models.Source, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.Metadata.Filename]; ok {
			continue
		}
		seen[m.Metadata.Filename] = struct{}{}
		out = append(out, models.Source{Filename: m.Metadata.Filename, Score: m.Score})
	}
	return out
}
