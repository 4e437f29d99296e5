package service

import (
	"context"
	"time"

	"github.com/Stellarhold170NT/therapy/internal/entity"
	"github.com/Stellarhold170NT/therapy/internal/repository/specification"
	"github.com/Stellarhold170NT/therapy/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IHistoryService is the append-only conversation store. Turns within a
// session come back in creation order.
type IHistoryService interface {
	Append(ctx context.Context, sessionId, role, content string) error
	ReadAll(ctx context.Context, sessionId string) ([]*entity.ChatMessage, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory) IHistoryService {
	return &historyService{
		uowFactory: uowFactory,
	}
}

func (hs *historyService) Append(ctx context.Context, sessionId, role, content string) error {
	uow := hs.uowFactory.NewUnitOfWork(ctx)
	_, err := uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	return err
}

func (hs *historyService) ReadAll(ctx context.Context, sessionId string) ([]*entity.ChatMessage, error) {
	uow := hs.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
}
