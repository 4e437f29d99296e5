package mapper

import (
	"encoding/json"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/model"
)

type PassageEmbeddingMapper struct{}

func NewPassageEmbeddingMapper() *PassageEmbeddingMapper {
	return &PassageEmbeddingMapper{}
}

func (m *PassageEmbeddingMapper) ToEntity(p *model.PassageEmbedding) *entity.PassageEmbedding {
	if p == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(p.Metadata) > 0 {
		// Malformed metadata is tolerated; the passage text is still usable.
		_ = json.Unmarshal(p.Metadata, &metadata)
	}

	return &entity.PassageEmbedding{
		Id:         p.Id,
		Collection: p.Collection,
		Content:    p.Content,
		Metadata:   metadata,
		Embedding:  p.Embedding.Slice(),
		CreatedAt:  p.CreatedAt,
	}
}
