// Package domain contains core concepts of the communication fan-out system.
// It holds value types only; no runtime, network, or storage logic lives here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Type tags a communication so clients can render it appropriately.
type Type string

const (
	TypeAnnouncement Type = "ANNOUNCEMENT"
	TypeCircular     Type = "CIRCULAR"
	TypeAlert        Type = "ALERT"
)

// Audience is the logical target of a communication before resolution:
// role tags and/or explicit recipient ids, always scoped to one tenant.
type Audience struct {
	Roles      []string
	Recipients []string
}

func (a Audience) IsEmpty() bool {
	return len(a.Roles) == 0 && len(a.Recipients) == 0
}

// Communication is owned by the Store; the fan-out core reads it but
// never mutates it once dispatch has begun.
type Communication struct {
	ID        uuid.UUID
	TenantID  string
	SenderID  string
	Title     string
	Body      string
	Type      Type
	Audience  Audience
	CreatedAt time.Time
}
