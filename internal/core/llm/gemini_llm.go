package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"secondbrain-backend/internal/core"
)

var _ core.LLMProvider = (*GeminiLLM)(nil)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
	retry     RetryPolicy
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string, retry RetryPolicy) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-flash-latest"
	}
	return &GeminiLLM{client: cl, modelName: modelName, retry: retry}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	var answer string
	call := func() error {
		resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
		if err != nil {
			return classify("generation", core.ErrGeneration, fmt.Errorf("gemini generate: %w", err))
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return fmt.Errorf("%w: empty candidate response", core.ErrGeneration)
		}

		var b strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		answer = b.String()
		return nil
	}

	if err := retryRateLimited(ctx, g.retry, call); err != nil {
		return "", err
	}
	return answer, nil
}
