package contract

import (
	"context"

	"github.com/Stellarhold170NT/therapy/internal/entity"

	"github.com/google/uuid"
)

// ModelInfoRepository is the read-only model registry lookup.
type ModelInfoRepository interface {
	// FindById returns nil (not an error) when the model does not exist.
	FindById(ctx context.Context, id uuid.UUID) (*entity.ModelInfo, error)
}
