package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Stellarhold170NT/therapy/internal/config"
	"github.com/Stellarhold170NT/therapy/internal/constant"
	"github.com/Stellarhold170NT/therapy/internal/dto"
	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
	"github.com/Stellarhold170NT/therapy/pkg/embedding"
	"github.com/Stellarhold170NT/therapy/pkg/llm"
	"github.com/Stellarhold170NT/therapy/pkg/rag/bundle"
	"github.com/Stellarhold170NT/therapy/pkg/rag/index"
	"github.com/Stellarhold170NT/therapy/pkg/rag/retrieval"
	"github.com/Stellarhold170NT/therapy/pkg/rag/telemetry"
	"github.com/Stellarhold170NT/therapy/pkg/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeLLM struct {
	chatResp     string
	chatErr      error
	chatHistory  [][]llm.Message
	streamChunks []string
	streamErr    error
	streamCalls  int
	toolResp     *llm.Message
	toolErr      error
	toolCalls    int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.chatHistory = append(f.chatHistory, history)
	return f.chatResp, f.chatErr
}

// ChatStream emits the configured chunks first and only then returns
// streamErr, so tests can model a stream that dies partway through.
func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, onChunk func(string) error, options ...llm.Option) error {
	f.streamCalls++
	for _, chunk := range f.streamChunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return f.streamErr
}

func (f *fakeLLM) ChatWithTools(ctx context.Context, history []llm.Message, toolDefs []llm.Tool, options ...llm.Option) (*llm.Message, error) {
	f.toolCalls++
	return f.toolResp, f.toolErr
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(ctx context.Context, text string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingValues{Values: []float32{1, 0}}}, nil
}

type fakePassageRepo struct {
	scored    []*contract.ScoredPassage
	scoredErr error
	plainErr  error
}

func (f *fakePassageRepo) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(f.scored)), nil
}

func (f *fakePassageRepo) SearchSimilar(ctx context.Context, collection string, emb []float32, limit int) ([]*entity.PassageEmbedding, error) {
	if f.plainErr != nil {
		return nil, f.plainErr
	}
	out := make([]*entity.PassageEmbedding, 0, len(f.scored))
	for _, s := range f.scored {
		out = append(out, s.Passage)
	}
	return out, nil
}

func (f *fakePassageRepo) SearchSimilarWithScore(ctx context.Context, collection string, emb []float32, limit int) ([]*contract.ScoredPassage, error) {
	if f.scoredErr != nil {
		return nil, f.scoredErr
	}
	return f.scored, nil
}

type fakeHistory struct {
	turns []*entity.ChatMessage
	err   error
}

func (f *fakeHistory) Append(ctx context.Context, sessionId, role, content string) error {
	f.turns = append(f.turns, &entity.ChatMessage{SessionId: sessionId, Role: role, Content: content})
	return f.err
}

func (f *fakeHistory) ReadAll(ctx context.Context, sessionId string) ([]*entity.ChatMessage, error) {
	return f.turns, f.err
}

type fakePublisher struct {
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type sinkTransport struct {
	chunks []string
	errs   []string
	done   bool
}

func (s *sinkTransport) WriteChunk(chunk string) error {
	s.chunks = append(s.chunks, chunk)
	return nil
}

func (s *sinkTransport) WriteError(message string) error {
	s.errs = append(s.errs, message)
	return nil
}

func (s *sinkTransport) Done() error {
	s.done = true
	return nil
}

func (s *sinkTransport) content() string {
	var out string
	for _, c := range s.chunks {
		out += c
	}
	return out
}

// --- Harness ---

type fixture struct {
	svc        IChatService
	bundleLLM  *fakeLLM
	defaultLLM *fakeLLM
	repo       *fakePassageRepo
	history    *fakeHistory
	publisher  *fakePublisher
	recorder   *telemetry.Recorder
}

func testTimeouts() config.TimeoutConfig {
	return config.TimeoutConfig{
		Retrieval:  time.Second,
		Generation: time.Second,
		Tool:       time.Second,
		IndexOpen:  time.Second,
	}
}

func scoredFixture(content string, distance float64) *contract.ScoredPassage {
	return &contract.ScoredPassage{
		Passage:  &entity.PassageEmbedding{Content: content},
		Distance: distance,
	}
}

func newFixture(t *testing.T, haveConfig, toolsEnabled bool) *fixture {
	t.Helper()

	bundleLLM := &fakeLLM{}
	defaultLLM := &fakeLLM{streamChunks: []string{"fallback answer"}}
	repo := &fakePassageRepo{
		scored: []*contract.ScoredPassage{
			scoredFixture("alpha", 0.12),
			scoredFixture("beta", 0.31),
			scoredFixture("gamma", 0.40),
		},
	}

	load := func(ctx context.Context) (*bundle.Bundle, error) {
		if !haveConfig {
			return nil, nil
		}
		return &bundle.Bundle{
			Config: &entity.RagConfig{
				ConfigName: "book-config",
				SearchType: constant.SearchTypeSimilarity,
				KValue:     3,
			},
			LLMModel:       &entity.ModelInfo{ModelName: "test-llm"},
			EmbeddingModel: &entity.ModelInfo{ModelName: "test-embed"},
			Index:          &index.Handle{Collection: "base/book-config", DocumentCount: 3},
			LLM:            bundleLLM,
			Embedder:       &fakeEmbedder{},
			LoadedAt:       time.Now(),
		}, nil
	}

	history := &fakeHistory{}
	publisher := &fakePublisher{}
	recorder := telemetry.NewRecorder(time.Minute)

	svc := NewChatService(
		bundle.NewCache(load, time.Hour),
		retrieval.NewRetriever(repo),
		history,
		publisher,
		recorder,
		tools.NewBridge(time.Second),
		defaultLLM,
		toolsEnabled,
		testTimeouts(),
		nopLogger{},
	)

	return &fixture{
		svc:        svc,
		bundleLLM:  bundleLLM,
		defaultLLM: defaultLLM,
		repo:       repo,
		history:    history,
		publisher:  publisher,
		recorder:   recorder,
	}
}

func (f *fixture) stream(t *testing.T, message string) (*sinkTransport, error) {
	t.Helper()
	sink := &sinkTransport{}
	err := f.svc.StreamChat(context.Background(), &dto.ChatStreamRequest{Message: message}, sink)
	return sink, err
}

// --- Tests ---

func TestStreamChatNoConfigUsesHistoryOnly(t *testing.T) {
	f := newFixture(t, false, false)

	sink, err := f.stream(t, "hello")
	require.NoError(t, err)

	assert.Equal(t, "fallback answer", sink.content())
	assert.True(t, sink.done)
	assert.Equal(t, 1, f.defaultLLM.streamCalls)
	assert.Zero(t, f.bundleLLM.streamCalls, "config-bound model must not be used without a config")

	// Nothing retrieved, nothing recorded.
	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Zero(t, snap.NumDocsRetrieved)
}

func TestStreamChatPlainRagWhenToolsDisabled(t *testing.T) {
	f := newFixture(t, true, false)
	f.bundleLLM.streamChunks = []string{"grounded ", "answer"}

	sink, err := f.stream(t, "what is chapter 3 about?")
	require.NoError(t, err)

	assert.Equal(t, "grounded answer", sink.content())
	assert.Zero(t, f.bundleLLM.toolCalls, "tools disabled must mean no tool-capable call")

	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Equal(t, 3, snap.NumDocsRetrieved)
	assert.Equal(t, []float64{0.12, 0.31, 0.40}, snap.SimilarityScores)
	assert.Equal(t, "book-config", snap.ConfigName)
	assert.Equal(t, tierPlainRag, snap.FallbackTier)
	// "alpha\n\nbeta\n\ngamma": passage total plus two separators.
	assert.Equal(t, len("alpha")+len("beta")+len("gamma")+4, snap.ContextLength)
}

func TestStreamChatToolAnswerWithoutCalls(t *testing.T) {
	f := newFixture(t, true, true)
	f.bundleLLM.toolResp = &llm.Message{Role: "assistant", Content: "direct tool-tier answer"}

	sink, err := f.stream(t, "question")
	require.NoError(t, err)

	assert.Equal(t, "direct tool-tier answer", sink.content())
	assert.Equal(t, 1, f.bundleLLM.toolCalls)
	assert.Zero(t, f.bundleLLM.streamCalls, "no plain-rag stream when the tool tier answered")

	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Equal(t, tierToolAugmented, snap.FallbackTier)
}

func TestStreamChatToolRoundWithErrorTurn(t *testing.T) {
	f := newFixture(t, true, true)
	// An unregistered tool forces a per-tool failure, which must become an
	// error turn rather than aborting the round.
	f.bundleLLM.toolResp = &llm.Message{
		Role: "assistant",
		ToolCalls: []llm.ToolCall{
			{Name: "no_such_tool", Arguments: map[string]interface{}{}},
		},
	}
	f.bundleLLM.chatResp = "final answer after tools"

	sink, err := f.stream(t, "question")
	require.NoError(t, err)

	assert.Equal(t, "final answer after tools", sink.content())
	require.Len(t, f.bundleLLM.chatHistory, 1, "exactly one follow-up call after the tool round")

	followUp := f.bundleLLM.chatHistory[0]
	last := followUp[len(followUp)-1]
	assert.Equal(t, "tool", last.Role)
	assert.Contains(t, last.Content, "no_such_tool")

	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Equal(t, []string{"no_such_tool"}, snap.ToolsUsed)
}

func TestStreamChatToolFailureFallsBackToPlainRag(t *testing.T) {
	f := newFixture(t, true, true)
	f.bundleLLM.toolErr = errors.New("tool-capable call refused")
	f.bundleLLM.streamChunks = []string{"plain rag answer"}

	sink, err := f.stream(t, "question")
	require.NoError(t, err)

	assert.Equal(t, "plain rag answer", sink.content())
	assert.Equal(t, 1, f.bundleLLM.toolCalls)
	assert.Equal(t, 1, f.bundleLLM.streamCalls)

	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Equal(t, tierPlainRag, snap.FallbackTier)
}

func TestStreamChatRetrievalFailureSkipsToHistoryOnly(t *testing.T) {
	f := newFixture(t, true, false)
	f.repo.scoredErr = errors.New("index unreachable")
	f.repo.plainErr = errors.New("index unreachable")

	sink, err := f.stream(t, "question")
	require.NoError(t, err)

	assert.Equal(t, "fallback answer", sink.content())
	assert.Equal(t, 1, f.defaultLLM.streamCalls)
	assert.Zero(t, f.bundleLLM.streamCalls)

	// Retrieval failure records no snapshot.
	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Zero(t, snap.NumDocsRetrieved)
	assert.Empty(t, snap.ConfigName)
}

func TestStreamChatPlainRagFailureFallsBackToHistoryOnly(t *testing.T) {
	f := newFixture(t, true, false)
	f.bundleLLM.streamErr = errors.New("generation backend down")

	sink, err := f.stream(t, "question")
	require.NoError(t, err)

	assert.Equal(t, "fallback answer", sink.content())
	assert.Equal(t, 1, f.defaultLLM.streamCalls)
}

func TestStreamChatSnapshotSurvivesTierFailures(t *testing.T) {
	f := newFixture(t, true, false)
	f.bundleLLM.streamErr = errors.New("generation backend down")

	_, err := f.stream(t, "question")
	require.NoError(t, err)

	// Retrieval succeeded, so its snapshot must be visible even though the
	// retrieval-backed tier never completed.
	snap := f.svc.GetDebugSnapshot(constant.DefaultSessionId)
	assert.Equal(t, 3, snap.NumDocsRetrieved)
	assert.Equal(t, "book-config", snap.ConfigName)
	assert.Empty(t, snap.FallbackTier, "no tier completed, so none is claimed")
}

func TestStreamChatDiscardsPartialOutputOnFallback(t *testing.T) {
	f := newFixture(t, true, false)
	f.bundleLLM.streamChunks = []string{"partial "}
	f.bundleLLM.streamErr = errors.New("stream died midway")

	_, err := f.stream(t, "my question")
	require.NoError(t, err)

	require.Len(t, f.publisher.payloads, 1)
	var msg dto.PersistTurnMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, "fallback answer", msg.AssistantText, "only the delivered final answer is persisted")
}

func TestStreamChatOnlyTerminalTierSurfacesError(t *testing.T) {
	f := newFixture(t, true, false)
	f.bundleLLM.streamErr = errors.New("generation backend down")
	f.defaultLLM.streamErr = errors.New("total outage")
	f.defaultLLM.streamChunks = nil

	sink, err := f.stream(t, "question")
	require.Error(t, err, "terminal tier failure must surface")

	assert.NotEmpty(t, sink.errs, "caller gets an explicit error frame, not a silent empty stream")
	assert.False(t, sink.done)
	assert.Empty(t, f.publisher.payloads, "a failed turn must not be persisted")
}

func TestStreamChatPersistsTurnAfterStream(t *testing.T) {
	f := newFixture(t, true, false)
	f.bundleLLM.streamChunks = []string{"grounded answer"}

	_, err := f.stream(t, "my question")
	require.NoError(t, err)

	require.Len(t, f.publisher.payloads, 1)
	var msg dto.PersistTurnMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, constant.DefaultSessionId, msg.SessionId)
	assert.Equal(t, "my question", msg.UserText)
	assert.Equal(t, "grounded answer", msg.AssistantText)
}

func TestStreamChatSessionIdDefaults(t *testing.T) {
	f := newFixture(t, false, false)

	sink := &sinkTransport{}
	err := f.svc.StreamChat(context.Background(), &dto.ChatStreamRequest{Message: "hi", SessionId: "user-7"}, sink)
	require.NoError(t, err)

	var msg dto.PersistTurnMessage
	require.Len(t, f.publisher.payloads, 1)
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, "user-7", msg.SessionId)
}

func TestTestSearchWithoutConfig(t *testing.T) {
	f := newFixture(t, false, false)

	res, err := f.svc.TestSearch(context.Background(), &dto.TestSearchRequest{Query: "q", K: 3})
	require.NoError(t, err)

	assert.False(t, res.HasConfig)
	assert.Empty(t, res.Results)
}

func TestTestSearchReturnsScoredResults(t *testing.T) {
	f := newFixture(t, true, false)

	res, err := f.svc.TestSearch(context.Background(), &dto.TestSearchRequest{Query: "q", K: 3})
	require.NoError(t, err)

	assert.True(t, res.HasConfig)
	require.Len(t, res.Results, 3)
	require.NotNil(t, res.Results[0].Score)
	assert.Equal(t, 0.12, *res.Results[0].Score)
	assert.Equal(t, "alpha", res.Results[0].Content)
}

func TestVectorStoreStatus(t *testing.T) {
	f := newFixture(t, true, false)

	// First call misses the cache, second call hits.
	first, err := f.svc.VectorStoreStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := f.svc.VectorStoreStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, "book-config", second.ConfigName)
	assert.Equal(t, "base/book-config", second.IndexPath)
	assert.Equal(t, int64(3), second.DocumentCount)
}

func TestVectorStoreStatusNoConfig(t *testing.T) {
	f := newFixture(t, false, false)

	_, err := f.svc.VectorStoreStatus(context.Background())
	require.ErrorIs(t, err, ErrNoActiveConfig)
}
