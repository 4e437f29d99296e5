package entity

import (
	"time"

	"github.com/google/uuid"
)

// ModelInfo describes a named model the pipeline can resolve by id.
type ModelInfo struct {
	Id        uuid.UUID
	ModelName string
	ModelType string // "llm" | "embedding"
	Provider  string
	AddedAt   time.Time
}
