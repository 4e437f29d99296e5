package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Stellarhold170NT/therapy/internal/constant"
	"github.com/Stellarhold170NT/therapy/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	historyService IHistoryService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	historyService IHistoryService,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		historyService: historyService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PersistTurnMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// User turn first: a failure between the two writes must never leave an
	// assistant turn without its prompting user turn.
	if err := cs.historyService.Append(ctx, payload.SessionId, constant.ChatMessageRoleUser, payload.UserText); err != nil {
		log.Printf("[ERROR] Failed to persist user turn for session %s: %v", payload.SessionId, err)
		msg.Nack()
		return
	}

	if err := cs.historyService.Append(ctx, payload.SessionId, constant.ChatMessageRoleAssistant, payload.AssistantText); err != nil {
		log.Printf("[ERROR] Failed to persist assistant turn for session %s: %v", payload.SessionId, err)
		// The user turn is already stored. Ack rather than replay both writes.
		msg.Ack()
		return
	}

	msg.Ack()
}
