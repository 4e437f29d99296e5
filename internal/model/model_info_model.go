package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModelInfo struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ModelName string         `gorm:"type:varchar(200);uniqueIndex;not null"`
	ModelType string         `gorm:"type:varchar(50);not null"` // "llm" | "embedding"
	Provider  string         `gorm:"type:varchar(100)"`
	AddedAt   time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ModelInfo) TableName() string {
	return "models"
}
