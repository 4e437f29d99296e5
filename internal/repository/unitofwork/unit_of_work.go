package unitofwork

import (
	"context"

	"github.com/Stellarhold170NT/therapy/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RagConfigRepository() contract.RagConfigRepository
	ModelInfoRepository() contract.ModelInfoRepository
	ChatMessageRepository() contract.ChatMessageRepository
	PassageEmbeddingRepository() contract.PassageEmbeddingRepository
}
