package contract

import (
	"context"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/specification"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
}
