package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted conversation turn. Turns are append-only and
// ordered by CreatedAt ascending within a session.
type ChatMessage struct {
	Id        uuid.UUID
	SessionId string
	Role      string
	Content   string
	CreatedAt time.Time
}
