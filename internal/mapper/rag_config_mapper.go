package mapper

import (
	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/model"
)

type RagConfigMapper struct{}

func NewRagConfigMapper() *RagConfigMapper {
	return &RagConfigMapper{}
}

func (m *RagConfigMapper) ToEntity(c *model.RagConfig) *entity.RagConfig {
	if c == nil {
		return nil
	}
	return &entity.RagConfig{
		Id:               c.Id,
		ConfigName:       c.ConfigName,
		LlmModelId:       c.LlmModelId,
		EmbeddingModelId: c.EmbeddingModelId,
		ChunkSize:        c.ChunkSize,
		ChunkOverlap:     c.ChunkOverlap,
		SearchType:       c.SearchType,
		KValue:           c.KValue,
		PromptTemplate:   c.PromptTemplate,
		CreatedAt:        c.CreatedAt,
	}
}

type ModelInfoMapper struct{}

func NewModelInfoMapper() *ModelInfoMapper {
	return &ModelInfoMapper{}
}

func (m *ModelInfoMapper) ToEntity(mi *model.ModelInfo) *entity.ModelInfo {
	if mi == nil {
		return nil
	}
	return &entity.ModelInfo{
		Id:        mi.Id,
		ModelName: mi.ModelName,
		ModelType: mi.ModelType,
		Provider:  mi.Provider,
		AddedAt:   mi.AddedAt,
	}
}
