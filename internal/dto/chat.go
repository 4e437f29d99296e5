package dto

// ChatStreamRequest starts a streamed generation turn.
type ChatStreamRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"session_id"`
}

// TestSearchRequest probes the retriever directly without generation.
type TestSearchRequest struct {
	Query string `json:"query" validate:"required"`
	K     int    `json:"k" validate:"omitempty,min=1,max=50"`
}

// TestSearchResult is one scored passage from a test search. Score is nil
// when the backend could not produce distances.
type TestSearchResult struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Score    *float64               `json:"score"`
}

type TestSearchResponse struct {
	HasConfig bool               `json:"has_config"`
	Results   []TestSearchResult `json:"results"`
}

// VectorStoreStatusResponse describes the currently loaded pipeline.
type VectorStoreStatusResponse struct {
	ConfigName     string `json:"config_name"`
	LlmModel       string `json:"llm_model"`
	EmbeddingModel string `json:"embedding_model"`
	IndexPath      string `json:"index_path"`
	DocumentCount  int64  `json:"document_count"`
	CacheHit       bool   `json:"cache_hit"`
}
