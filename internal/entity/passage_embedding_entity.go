package entity

import (
	"time"

	"github.com/google/uuid"
)

// PassageEmbedding is one ingested chunk in the vector index. The ingestion
// job writes these; the pipeline only reads them. Collection holds the index
// address (<base-directory>/<sanitized-config-name>).
type PassageEmbedding struct {
	Id         uuid.UUID
	Collection string
	Content    string
	Metadata   map[string]interface{}
	Embedding  []float32
	CreatedAt  time.Time
}
