package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/unitofwork"
	"github.com/Stellarhold170NT/therapy/pkg/embedding"
	"github.com/Stellarhold170NT/therapy/pkg/llm"
	"github.com/Stellarhold170NT/therapy/pkg/rag/index"
)

// Bundle is everything needed to serve one generation request: the active
// configuration, its resolved models, the opened vector index and live
// provider clients. A bundle is immutable once loaded; all requests within
// the cache TTL share the same instance.
type Bundle struct {
	Config         *entity.RagConfig
	LLMModel       *entity.ModelInfo
	EmbeddingModel *entity.ModelInfo
	Index          *index.Handle
	LLM            llm.LLMProvider
	Embedder       embedding.EmbeddingProvider
	LoadedAt       time.Time
}

// LLMFactory builds a generation client for a provider/model pair.
type LLMFactory func(provider, modelName string) (llm.LLMProvider, error)

// EmbedderFactory builds an embedding client for a provider/model pair.
type EmbedderFactory func(provider, modelName string) (embedding.EmbeddingProvider, error)

// Loader assembles bundles from the database and the index gateway.
type Loader struct {
	factory     unitofwork.RepositoryFactory
	gateway     *index.Gateway
	newLLM      LLMFactory
	newEmbedder EmbedderFactory
}

func NewLoader(factory unitofwork.RepositoryFactory, gateway *index.Gateway, newLLM LLMFactory, newEmbedder EmbedderFactory) *Loader {
	return &Loader{
		factory:     factory,
		gateway:     gateway,
		newLLM:      newLLM,
		newEmbedder: newEmbedder,
	}
}

// Load builds a fresh bundle from the latest configuration row. A missing
// configuration, a dangling model reference and a missing or empty index all
// yield (nil, nil): the pipeline continues without retrieval. Only storage
// and client-construction failures return an error.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	uow := l.factory.NewUnitOfWork(ctx)

	cfg, err := uow.RagConfigRepository().FindLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rag config: %w", err)
	}
	if cfg == nil {
		return nil, nil
	}

	llmModel, err := uow.ModelInfoRepository().FindById(ctx, cfg.LlmModelId)
	if err != nil {
		return nil, fmt.Errorf("load llm model: %w", err)
	}

	embModel, err := uow.ModelInfoRepository().FindById(ctx, cfg.EmbeddingModelId)
	if err != nil {
		return nil, fmt.Errorf("load embedding model: %w", err)
	}

	// A dangling reference means no usable configuration, not a hard failure.
	if llmModel == nil || embModel == nil {
		return nil, nil
	}

	handle, err := l.gateway.Open(ctx, cfg.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	if handle == nil {
		return nil, nil
	}

	llmClient, err := l.newLLM(llmModel.Provider, llmModel.ModelName)
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}

	embedder, err := l.newEmbedder(embModel.Provider, embModel.ModelName)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}

	return &Bundle{
		Config:         cfg,
		LLMModel:       llmModel,
		EmbeddingModel: embModel,
		Index:          handle,
		LLM:            llmClient,
		Embedder:       embedder,
		LoadedAt:       time.Now(),
	}, nil
}
