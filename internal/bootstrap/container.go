package bootstrap

import (
	"context"
	"log"

	"github.com/Stellarhold170NT/therapy/internal/config"
	"github.com/Stellarhold170NT/therapy/internal/controller"
	"github.com/Stellarhold170NT/therapy/internal/pkg/logger"
	"github.com/Stellarhold170NT/therapy/internal/repository/implementation"
	"github.com/Stellarhold170NT/therapy/internal/repository/unitofwork"
	"github.com/Stellarhold170NT/therapy/internal/service"
	"github.com/Stellarhold170NT/therapy/pkg/embedding"
	"github.com/Stellarhold170NT/therapy/pkg/events"
	"github.com/Stellarhold170NT/therapy/pkg/llm"
	"github.com/Stellarhold170NT/therapy/pkg/llm/factory"
	"github.com/Stellarhold170NT/therapy/pkg/rag/bundle"
	"github.com/Stellarhold170NT/therapy/pkg/rag/index"
	"github.com/Stellarhold170NT/therapy/pkg/rag/retrieval"
	"github.com/Stellarhold170NT/therapy/pkg/rag/telemetry"
	"github.com/Stellarhold170NT/therapy/pkg/tools"

	pktNats "github.com/Stellarhold170NT/therapy/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	defaultLLM, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.DefaultLLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize default LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using default LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.DefaultLLMModel)

	newLLM := func(provider, modelName string) (llm.LLMProvider, error) {
		return factory.NewLLMProvider(provider, modelName, cfg.Ai.OllamaBaseURL)
	}
	newEmbedder := func(provider, modelName string) (embedding.EmbeddingProvider, error) {
		// Ollama is the only embedding backend wired in; the provider row
		// selects the model.
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, modelName), nil
	}

	// 4. RAG pipeline components
	passageRepo := implementation.NewPassageEmbeddingRepository(db)
	gateway := index.NewGateway(passageRepo, cfg.Ai.IndexBaseDir)
	loader := bundle.NewLoader(uowFactory, gateway, newLLM, newEmbedder)
	configCache := bundle.NewCache(loader.Load, bundle.DefaultTTL)
	retriever := retrieval.NewRetriever(passageRepo)
	recorder := telemetry.NewRecorder(0)
	bridge := tools.NewBridge(cfg.Timeouts.Tool)

	toolsEnabled := cfg.Keys.WebSearch != ""
	if !toolsEnabled {
		log.Println("[INFO] Web search credential absent, tool-augmented generation disabled")
	}

	// 5. NATS (config invalidation)
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}
	if natsSub != nil {
		subject := "events." + events.RagConfigUpdatedType
		err := natsSub.Subscribe(subject, "chat-config-invalidator", func(ctx context.Context, evt events.Event) error {
			log.Printf("[INFO] Config update event received, invalidating cache")
			configCache.Invalidate()
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to config updates: %v", err)
		}
	}

	// 6. Services
	historyService := service.NewHistoryService(uowFactory)
	publisherService := service.NewPublisherService(pubSub, events.ChatTurnCompletedTopic)
	consumerService := service.NewConsumerService(pubSub, events.ChatTurnCompletedTopic, historyService)

	chatService := service.NewChatService(
		configCache,
		retriever,
		historyService,
		publisherService,
		recorder,
		bridge,
		defaultLLM,
		toolsEnabled,
		cfg.Timeouts,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService, sysLogger),
		ConsumerService: consumerService,
	}
}
