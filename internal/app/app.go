package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"secondbrain-backend/internal/config"
	"secondbrain-backend/internal/core/chunker"
	db "secondbrain-backend/internal/core/database"
	"secondbrain-backend/internal/core/extractor"
	"secondbrain-backend/internal/core/llm"
	"secondbrain-backend/internal/core/objectclient"
	"secondbrain-backend/internal/core/vectorstore"
	"secondbrain-backend/internal/services"
)

// App owns every long-lived component and wires them together.
type App struct {
	DBClient *db.DatabaseClient
	Embedder *llm.GeminiEmbedder
	LLM      *llm.GeminiLLM
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	retry := llm.DefaultRetryPolicy(cfg.EmbedMaxRetries)

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, retry)
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, retry)
	if err != nil {
		return nil, fmt.Errorf("initializing llm: %w", err)
	}

	vectors := vectorstore.NewPGStore(dbClient.DB())
	splitter := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	docExtractor := extractor.NewDocconvExtractor(false)

	ingestSvc := services.NewIngestService(dbClient, objClient, docExtractor, embedder, vectors, splitter, cfg.BucketName)
	chatSvc := services.NewChatService(embedder, vectors, llmProvider, cfg.TopK)

	server := NewServer(cfg, dbClient, ingestSvc, chatSvc)

	return &App{DBClient: dbClient, Embedder: embedder, LLM: llmProvider, Server: server}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
