package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RagConfig struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConfigName       string         `gorm:"type:varchar(200);not null"`
	LlmModelId       uuid.UUID      `gorm:"type:uuid;not null"`
	EmbeddingModelId uuid.UUID      `gorm:"type:uuid;not null"`
	ChunkSize        int            `gorm:"not null;default:1000"`
	ChunkOverlap     int            `gorm:"not null;default:200"`
	SearchType       string         `gorm:"type:varchar(50);not null;default:'similarity'"`
	KValue           int            `gorm:"not null;default:10"`
	PromptTemplate   string         `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (RagConfig) TableName() string {
	return "rag_configs"
}
