package entity

import (
	"time"

	"github.com/google/uuid"
)

// RagConfig is a retrieval configuration. Rows are immutable once created;
// the configuration with the newest CreatedAt is the active one.
type RagConfig struct {
	Id               uuid.UUID
	ConfigName       string
	LlmModelId       uuid.UUID
	EmbeddingModelId uuid.UUID
	ChunkSize        int
	ChunkOverlap     int
	SearchType       string // "similarity" | "mmr"
	KValue           int
	PromptTemplate   string
	CreatedAt        time.Time
}
