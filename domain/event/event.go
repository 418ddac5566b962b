package event

import (
	"comms-hub/domain"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is anything the broadcaster can push to live sessions.
type DomainEvent interface {
	EventName() string
}

// CommunicationCreated is pushed to the tenant room as soon as a
// communication is dispatched. It carries a summary of the audience, not
// the resolved recipient list.
type CommunicationCreated struct {
	CommunicationID uuid.UUID `json:"communication_id"`
	TenantID        string    `json:"tenant_id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	Roles           []string  `json:"roles,omitempty"`
	Recipients      int       `json:"recipients"`
	At              time.Time `json:"at"`
}

func (CommunicationCreated) EventName() string { return "communication.created" }

// RoomMessage is a client message forwarded to room members after the
// Store has persisted it.
type RoomMessage struct {
	Room     domain.RoomID `json:"room"`
	SenderID string        `json:"sender_id"`
	Content  string        `json:"content"`
	At       time.Time     `json:"at"`
}

func (RoomMessage) EventName() string { return "room.message" }
