package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Stellarhold170NT/therapy/internal/config"
	"github.com/Stellarhold170NT/therapy/internal/constant"
	"github.com/Stellarhold170NT/therapy/internal/dto"
	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/pkg/logger"
	"github.com/Stellarhold170NT/therapy/pkg/llm"
	"github.com/Stellarhold170NT/therapy/pkg/rag/bundle"
	"github.com/Stellarhold170NT/therapy/pkg/rag/prompt"
	"github.com/Stellarhold170NT/therapy/pkg/rag/retrieval"
	"github.com/Stellarhold170NT/therapy/pkg/rag/telemetry"
	"github.com/Stellarhold170NT/therapy/pkg/stream"
	"github.com/Stellarhold170NT/therapy/pkg/tools"
)

// ErrNoActiveConfig reports that no usable pipeline configuration exists.
// It is a degraded-mode signal on the chat path and only surfaces as an
// error from the diagnostics endpoints.
var ErrNoActiveConfig = errors.New("no active configuration")

// IChatService is the generation orchestrator: it resolves the active
// configuration bundle, retrieves grounding context and walks the fallback
// tiers until an answer reaches the transport.
type IChatService interface {
	StreamChat(ctx context.Context, request *dto.ChatStreamRequest, transport stream.Transport) error
	TestSearch(ctx context.Context, request *dto.TestSearchRequest) (*dto.TestSearchResponse, error)
	GetDebugSnapshot(sessionId string) telemetry.Snapshot
	VectorStoreStatus(ctx context.Context) (*dto.VectorStoreStatusResponse, error)
}

// Fallback tiers, attempted in order. Only the last one may surface an
// error to the caller.
const (
	tierToolAugmented = "tool_augmented"
	tierPlainRag      = "plain_rag"
	tierHistoryOnly   = "history_only"
	tierNoConfig      = "no_config"
)

type stageStatus int

const (
	stageOk stageStatus = iota
	stageDegraded
	stageFatal
)

// stageResult expresses how a tier ended as data, so transitions are
// inspectable instead of being buried in error control flow.
type stageResult struct {
	status stageStatus
	reason string
}

func stOk() stageResult                    { return stageResult{status: stageOk} }
func stDegraded(reason string) stageResult { return stageResult{status: stageDegraded, reason: reason} }
func stFatal(reason string) stageResult    { return stageResult{status: stageFatal, reason: reason} }

type chatService struct {
	cache          *bundle.Cache
	retriever      *retrieval.Retriever
	historyService IHistoryService
	publisher      IPublisherService
	recorder       *telemetry.Recorder
	bridge         *tools.Bridge
	defaultLLM     llm.LLMProvider
	toolsEnabled   bool
	timeouts       config.TimeoutConfig
	logger         logger.ILogger
	llmLogger      *log.Logger
}

func NewChatService(
	cache *bundle.Cache,
	retriever *retrieval.Retriever,
	historyService IHistoryService,
	publisher IPublisherService,
	recorder *telemetry.Recorder,
	bridge *tools.Bridge,
	defaultLLM llm.LLMProvider,
	toolsEnabled bool,
	timeouts config.TimeoutConfig,
	appLogger logger.ILogger,
) IChatService {
	return &chatService{
		cache:          cache,
		retriever:      retriever,
		historyService: historyService,
		publisher:      publisher,
		recorder:       recorder,
		bridge:         bridge,
		defaultLLM:     defaultLLM,
		toolsEnabled:   toolsEnabled,
		timeouts:       timeouts,
		logger:         appLogger,
		llmLogger:      initLLMLogger(),
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// StreamChat runs one full generation turn. Failures inside the pipeline
// degrade tier by tier; the caller sees an error only when the terminal
// history-only tier also fails.
func (cs *chatService) StreamChat(ctx context.Context, request *dto.ChatStreamRequest, transport stream.Transport) error {
	sessionId := request.SessionId
	if sessionId == "" {
		sessionId = constant.DefaultSessionId
	}

	history := cs.loadHistory(ctx, sessionId)
	capture := stream.NewCapture(transport)

	b := cs.resolveBundle(ctx)

	var res stageResult
	if b == nil {
		cs.llmLogger.Printf("session=%s tier=%s: no usable configuration, answering from history only", sessionId, tierNoConfig)
		res = cs.streamHistoryOnly(ctx, history, request.Message, capture)
	} else {
		res = cs.runPipeline(ctx, b, sessionId, history, request.Message, capture)
		if res.status == stageDegraded {
			cs.llmLogger.Printf("session=%s degraded to %s: %s", sessionId, tierHistoryOnly, res.reason)
			// A tier that failed mid-stream may have left partial output in
			// the capture; only the fallback answer gets persisted.
			capture.Reset()
			res = cs.streamHistoryOnly(ctx, history, request.Message, capture)
		}
	}

	if res.status != stageOk {
		cs.logger.Error("chat_service", "all generation tiers failed", map[string]interface{}{
			"session_id": sessionId,
			"reason":     res.reason,
		})
		_ = capture.WriteError("generation failed")
		return fmt.Errorf("history-only generation failed: %s", res.reason)
	}

	_ = capture.Done()

	// The answer is already with the caller; persistence runs on its own
	// and a failure here is logged, never surfaced.
	cs.persistTurn(sessionId, request.Message, capture.Content())

	return nil
}

func (cs *chatService) loadHistory(ctx context.Context, sessionId string) []*entity.ChatMessage {
	history, err := cs.historyService.ReadAll(ctx, sessionId)
	if err != nil {
		cs.logger.Warn("chat_service", "failed to load history, continuing without it", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}
	return history
}

func (cs *chatService) resolveBundle(ctx context.Context) *bundle.Bundle {
	rctx, cancel := context.WithTimeout(ctx, cs.timeouts.IndexOpen)
	defer cancel()

	b, cacheHit, err := cs.cache.Get(rctx)
	if err != nil {
		cs.logger.Warn("chat_service", "config resolution failed, treating as no config", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	if b != nil && !cacheHit {
		cs.llmLogger.Printf("loaded config %q (llm=%s embedding=%s index=%s docs=%d)",
			b.Config.ConfigName, b.LLMModel.ModelName, b.EmbeddingModel.ModelName, b.Index.Collection, b.Index.DocumentCount)
	}
	return b
}

// runPipeline covers the retrieval-backed tiers: tool-augmented generation
// first, plain RAG second. A degraded result hands control to the
// history-only tier in the caller.
func (cs *chatService) runPipeline(ctx context.Context, b *bundle.Bundle, sessionId string, history []*entity.ChatMessage, message string, capture *stream.Capture) stageResult {
	rctx, cancel := context.WithTimeout(ctx, cs.timeouts.Retrieval)
	result, err := cs.retriever.Retrieve(rctx, b.Embedder, b.Index.Collection, b.Config.SearchType, message, b.Config.KValue)
	cancel()
	if err != nil {
		// No snapshot on retrieval failure: there is nothing to report.
		return stDegraded(fmt.Sprintf("retrieval failed: %v", err))
	}

	contextText := result.ContextText()
	snap := cs.buildSnapshot(b, message, result, contextText)
	// Recorded as soon as retrieval lands, so the diagnostics surface shows
	// what was retrieved even when every generation tier then fails. The
	// completed tier overwrites this with FallbackTier and ToolsUsed filled.
	cs.recorder.Record(sessionId, snap)

	builder := prompt.NewBuilder(b.Config.PromptTemplate)
	messages := builder.BuildMessages(history, contextText, message)

	if cs.toolsEnabled {
		answer, toolsUsed, ok := cs.tryToolAugmented(ctx, b, messages)
		if ok {
			if err := capture.WriteChunk(answer); err != nil {
				return stDegraded(fmt.Sprintf("transport write failed: %v", err))
			}
			snap.FallbackTier = tierToolAugmented
			snap.ToolsUsed = toolsUsed
			cs.recorder.Record(sessionId, snap)
			return stOk()
		}
		cs.llmLogger.Printf("session=%s tool-augmented tier failed, trying %s", sessionId, tierPlainRag)
	}

	gctx, cancel := context.WithTimeout(ctx, cs.timeouts.Generation)
	defer cancel()
	err = b.LLM.ChatStream(gctx, messages, func(chunk string) error {
		return capture.WriteChunk(chunk)
	})
	if err != nil {
		return stDegraded(fmt.Sprintf("plain rag generation failed: %v", err))
	}

	snap.FallbackTier = tierPlainRag
	cs.recorder.Record(sessionId, snap)
	return stOk()
}

// tryToolAugmented issues one tool-capable generation call and, if the model
// requested tools, runs them all and makes exactly one follow-up call.
// Tool-calling is a single round, never iterative.
func (cs *chatService) tryToolAugmented(ctx context.Context, b *bundle.Bundle, messages []llm.Message) (string, []string, bool) {
	gctx, cancel := context.WithTimeout(ctx, cs.timeouts.Generation)
	defer cancel()

	resp, err := b.LLM.ChatWithTools(gctx, messages, cs.bridge.Definitions())
	if err != nil {
		cs.llmLogger.Printf("tool-capable call failed: %v", err)
		return "", nil, false
	}

	if len(resp.ToolCalls) == 0 {
		return resp.Content, nil, true
	}

	augmented := append(append([]llm.Message{}, messages...), *resp)
	toolsUsed := make([]string, 0, len(resp.ToolCalls))

	for _, call := range resp.ToolCalls {
		tctx, tcancel := context.WithTimeout(ctx, cs.timeouts.Tool)
		out, err := cs.bridge.Execute(tctx, call)
		tcancel()
		if err != nil {
			// A failed tool becomes an error turn; the round continues.
			cs.llmLogger.Printf("tool %s failed: %v", call.Name, err)
			out = fmt.Sprintf("Tool %s failed: %v", call.Name, err)
		}
		augmented = append(augmented, llm.Message{
			Role:    "tool",
			Content: out,
		})
		toolsUsed = append(toolsUsed, call.Name)
	}

	fctx, fcancel := context.WithTimeout(ctx, cs.timeouts.Generation)
	defer fcancel()

	final, err := b.LLM.Chat(fctx, augmented)
	if err != nil {
		cs.llmLogger.Printf("follow-up call after tools failed: %v", err)
		return "", nil, false
	}
	return final, toolsUsed, true
}

// streamHistoryOnly is the terminal tier: a generic instruction, the stored
// conversation and the new question, against the default model. Its failure
// is the only one the caller ever sees.
func (cs *chatService) streamHistoryOnly(ctx context.Context, history []*entity.ChatMessage, message string, capture *stream.Capture) stageResult {
	builder := prompt.NewBuilder("")
	messages := builder.BuildMessages(history, "", message)

	gctx, cancel := context.WithTimeout(ctx, cs.timeouts.Generation)
	defer cancel()

	err := cs.defaultLLM.ChatStream(gctx, messages, func(chunk string) error {
		return capture.WriteChunk(chunk)
	})
	if err != nil {
		return stFatal(err.Error())
	}
	return stOk()
}

func (cs *chatService) buildSnapshot(b *bundle.Bundle, query string, result *retrieval.Result, contextText string) telemetry.Snapshot {
	return telemetry.Snapshot{
		Query:            query,
		NumDocsRetrieved: len(result.Passages),
		ContextLength:    len(contextText),
		RetrievedDocs:    result.Passages,
		SimilarityScores: result.Scores,
		ContextPreview:   contextText,
		Metadata:         result.Metadata,
		ConfigName:       b.Config.ConfigName,
		LlmModel:         b.LLMModel.ModelName,
		EmbeddingModel:   b.EmbeddingModel.ModelName,
		IndexPath:        b.Index.Collection,
	}
}

// persistTurn hands the completed exchange to the persistence consumer.
// It runs after the stream has closed and deliberately ignores the request
// context, so a client disconnect cannot abort the writes.
func (cs *chatService) persistTurn(sessionId, userText, assistantText string) {
	payload, err := json.Marshal(dto.PersistTurnMessage{
		SessionId:     sessionId,
		UserText:      userText,
		AssistantText: assistantText,
	})
	if err != nil {
		cs.logger.Error("chat_service", "failed to marshal turn for persistence", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := cs.publisher.Publish(context.Background(), payload); err != nil {
		cs.logger.Error("chat_service", "failed to publish turn for persistence", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// --- Diagnostics surface ---

func (cs *chatService) TestSearch(ctx context.Context, request *dto.TestSearchRequest) (*dto.TestSearchResponse, error) {
	b := cs.resolveBundle(ctx)
	if b == nil {
		return &dto.TestSearchResponse{
			HasConfig: false,
			Results:   []dto.TestSearchResult{},
		}, nil
	}

	k := request.K
	if k <= 0 {
		k = b.Config.KValue
	}

	rctx, cancel := context.WithTimeout(ctx, cs.timeouts.Retrieval)
	defer cancel()

	result, err := cs.retriever.Retrieve(rctx, b.Embedder, b.Index.Collection, b.Config.SearchType, request.Query, k)
	if err != nil {
		return nil, fmt.Errorf("test search: %w", err)
	}

	results := make([]dto.TestSearchResult, 0, len(result.Passages))
	for i, passage := range result.Passages {
		var score *float64
		if result.Scores != nil {
			s := result.Scores[i]
			score = &s
		}
		results = append(results, dto.TestSearchResult{
			Content:  passage,
			Metadata: result.Metadata[i],
			Score:    score,
		})
	}

	return &dto.TestSearchResponse{
		HasConfig: true,
		Results:   results,
	}, nil
}

func (cs *chatService) GetDebugSnapshot(sessionId string) telemetry.Snapshot {
	snap, _ := cs.recorder.Get(sessionId)
	return snap
}

func (cs *chatService) VectorStoreStatus(ctx context.Context) (*dto.VectorStoreStatusResponse, error) {
	rctx, cancel := context.WithTimeout(ctx, cs.timeouts.IndexOpen)
	defer cancel()

	b, cacheHit, err := cs.cache.Get(rctx)
	if err != nil {
		return nil, fmt.Errorf("vector store status: %w", err)
	}
	if b == nil {
		return nil, ErrNoActiveConfig
	}

	return &dto.VectorStoreStatusResponse{
		ConfigName:     b.Config.ConfigName,
		LlmModel:       b.LLMModel.ModelName,
		EmbeddingModel: b.EmbeddingModel.ModelName,
		IndexPath:      b.Index.Collection,
		DocumentCount:  b.Index.DocumentCount,
		CacheHit:       cacheHit,
	}, nil
}
