package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"secondbrain-backend/internal/core"
)

// BatchEmbedContents caps one request at 100 inputs.
const embedBatchLimit = 100

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

// GeminiEmbedder embeds text with the Gemini embedding model. Indexing and
// query calls use distinct task types so the model can optimize for
// asymmetric retrieval.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	retry     RetryPolicy
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, retry RetryPolicy) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-embedding-001"
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, retry: retry}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedDocuments embeds chunk texts for indexing (retrieval-document task
// mode). Batches of up to 100 texts run concurrently; output order matches
// input order.
func (g *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(4)
	for start := 0; start < len(texts); start += embedBatchLimit {
		start := start
		end := start + embedBatchLimit
		if end > len(texts) {
			end = len(texts)
		}
		grp.Go(func() error {
			vecs, err := g.embedBatch(gctx, texts[start:end])
			if err != nil {
				return err
			}
			for i, v := range vecs {
				out[start+i] = v
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := g.client.EmbeddingModel(g.modelName)
	em.TaskType = genai.TaskTypeRetrievalDocument

	var vecs [][]float32
	call := func() error {
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return classify("embedding", core.ErrEmbedding, fmt.Errorf("gemini batch embed: %w", err))
		}
		if len(resp.Embeddings) != len(texts) {
			return fmt.Errorf("%w: got %d embeddings for %d texts", core.ErrEmbedding, len(resp.Embeddings), len(texts))
		}
		vecs = vecs[:0]
		for _, e := range resp.Embeddings {
			vecs = append(vecs, e.Values)
		}
		return nil
	}

	if err := retryRateLimited(ctx, g.retry, call); err != nil {
		return nil, err
	}
	return vecs, nil
}

// EmbedQuery embeds a question at retrieval time (retrieval-query task mode).
func (g *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.modelName)
	em.TaskType = genai.TaskTypeRetrievalQuery

	var vec []float32
	call := func() error {
		resp, err := em.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return classify("embedding", core.ErrEmbedding, fmt.Errorf("gemini embed query: %w", err))
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return fmt.Errorf("%w: empty embedding response", core.ErrEmbedding)
		}
		vec = resp.Embedding.Values
		return nil
	}

	if err := retryRateLimited(ctx, g.retry, call); err != nil {
		return nil, err
	}
	return vec, nil
}
