package runtime

import (
	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"context"
	"fmt"
	"log/slog"
)

// Broadcaster pushes events to every live session in scope through the
// registry. Best-effort with no retry: a sink that refuses an emission is
// treated as an implicit disconnect. Durability is the dispatch queue's
// job, so nothing here ever surfaces an error to the caller.
type Broadcaster struct {
	registry contract.IRegistry
	log      *slog.Logger
}

var _ contract.IBroadcaster = (*Broadcaster)(nil)

func NewBroadcaster(registry contract.IRegistry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

func (b *Broadcaster) PushToTenant(ctx context.Context, tenantID string, e event.DomainEvent) {
	b.emit(ctx, b.registry.SessionsInRoom(domain.TenantRoom(tenantID)), e)
}

func (b *Broadcaster) PushToRoom(ctx context.Context, room domain.RoomID, e event.DomainEvent) {
	b.emit(ctx, b.registry.SessionsInRoom(room), e)
}

func (b *Broadcaster) PushToRecipient(ctx context.Context, recipientID string, e event.DomainEvent) {
	b.emit(ctx, b.registry.SessionsFor(recipientID), e)
}

// emit delivers the event to each sink in the snapshot. Sinks buffer
// writes, so a Consume call never waits on a peer; an error means the
// session is gone or hopelessly behind and gets unregistered.
func (b *Broadcaster) emit(ctx context.Context, sinks map[domain.SessionID]contract.EventSink, e event.DomainEvent) {
	for id, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			b.log.Debug(fmt.Sprintf("Session %s rejected %s, disconnecting", id, e.EventName()), "error", err)
			b.registry.Disconnect(id)
		}
	}
}
