package telemetry

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// passagePreviewChars bounds each stored passage preview.
	passagePreviewChars = 500

	// contextPreviewChars bounds the stored context preview.
	contextPreviewChars = 1000

	defaultTTL    = 30 * time.Minute
	cleanupPeriod = 10 * time.Minute
)

// Snapshot captures the retrieval state behind one generation turn.
// SimilarityScores is nil when the scored search path was unavailable.
type Snapshot struct {
	Query            string                   `json:"query"`
	NumDocsRetrieved int                      `json:"num_docs_retrieved"`
	ContextLength    int                      `json:"context_length"`
	RetrievedDocs    []string                 `json:"retrieved_docs"`
	SimilarityScores []float64                `json:"similarity_scores"`
	ContextPreview   string                   `json:"context_preview"`
	Metadata         []map[string]interface{} `json:"metadata,omitempty"`
	ConfigName       string                   `json:"config_name"`
	LlmModel         string                   `json:"llm_model"`
	EmbeddingModel   string                   `json:"embedding_model"`
	IndexPath        string                   `json:"index_path"`
	FallbackTier     string                   `json:"fallback_tier,omitempty"`
	ToolsUsed        []string                 `json:"tools_used,omitempty"`
	RecordedAt       time.Time                `json:"recorded_at"`
}

// Recorder keeps the most recent snapshot per session in a TTL-bounded map.
// Last write wins; entries expire on their own so abandoned sessions do not
// accumulate.
type Recorder struct {
	store *gocache.Cache
}

func NewRecorder(ttl time.Duration) *Recorder {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Recorder{
		store: gocache.New(ttl, cleanupPeriod),
	}
}

// Record stores the snapshot for a session, clipping previews first.
func (r *Recorder) Record(sessionId string, snap Snapshot) {
	docs := make([]string, len(snap.RetrievedDocs))
	for i, d := range snap.RetrievedDocs {
		docs[i] = clip(d, passagePreviewChars)
	}
	snap.RetrievedDocs = docs
	snap.ContextPreview = clip(snap.ContextPreview, contextPreviewChars)
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now()
	}
	r.store.SetDefault(sessionId, snap)
}

// Get returns the latest snapshot for a session. When none exists a zeroed
// snapshot with empty slices comes back, so callers always see the full
// shape.
func (r *Recorder) Get(sessionId string) (Snapshot, bool) {
	v, found := r.store.Get(sessionId)
	if !found {
		return Snapshot{
			RetrievedDocs:    []string{},
			SimilarityScores: []float64{},
		}, false
	}
	return v.(Snapshot), true
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
