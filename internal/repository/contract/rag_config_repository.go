package contract

import (
	"context"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/specification"
)

// RagConfigRepository is the read side of the retrieval-configuration store.
// Creation and updates belong to the admin surface, not this service.
type RagConfigRepository interface {
	// FindLatest returns the configuration with the newest creation
	// timestamp, or nil when no configuration exists.
	FindLatest(ctx context.Context) (*entity.RagConfig, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RagConfig, error)
}
