//go:generate go run go.uber.org/mock/mockgen -destination=../mocks/mock_contract.go -package=mocks comms-hub/contract Directory,DeliveryChannel
package contract

import (
	"comms-hub/domain"
	"comms-hub/domain/event"
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live session's outbound channel. Consume must not block
// on network I/O; implementations buffer and report a full buffer as an error
// so the caller can treat the session as gone.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry tracks which recipients currently hold live sessions, grouped
// by tenant room and ad-hoc rooms. Pure in-memory state; mutations are
// serialized internally.
type IRegistry interface {
	Connect(id domain.SessionID, recipientID, tenantID string, sink EventSink)
	Disconnect(id domain.SessionID)
	JoinRoom(id domain.SessionID, room domain.RoomID)
	SessionsFor(recipientID string) map[domain.SessionID]EventSink
	SessionsInRoom(room domain.RoomID) map[domain.SessionID]EventSink
}

// IBroadcaster pushes events to every live session in scope. Best-effort,
// fire-and-forget: a session that refuses the emission is treated as an
// implicit disconnect, never retried.
type IBroadcaster interface {
	PushToTenant(ctx context.Context, tenantID string, e event.DomainEvent)
	PushToRoom(ctx context.Context, room domain.RoomID, e event.DomainEvent)
	PushToRecipient(ctx context.Context, recipientID string, e event.DomainEvent)
}

// IResolver turns a communication's declared audience into a concrete,
// deduplicated, tenant-scoped recipient set.
type IResolver interface {
	Resolve(ctx context.Context, tenantID string, audience domain.Audience) (domain.ResolvedAudience, error)
}

// IJobRepository is the durable dispatch queue backend. Enqueue reports
// whether the job was accepted; re-submission with a known id is a no-op.
type IJobRepository interface {
	Enqueue(job domain.DeliveryJob) (bool, error)
	NextDue(now time.Time, limit int) ([]domain.DeliveryJob, error)
	Claim(job domain.DeliveryJob) (domain.DeliveryJob, error)
	Requeue(job domain.DeliveryJob, nextEligibleAt time.Time) error
	MarkSucceeded(job domain.DeliveryJob) error
	MarkFailedPermanent(job domain.DeliveryJob) error
	Get(jobID string) (domain.DeliveryJob, error)
	LatestForCommunication(communicationID uuid.UUID) (domain.DeliveryJob, error)
}

// IDispatcher orchestrates resolution, live broadcast and durable enqueue,
// and exposes the operator surface.
type IDispatcher interface {
	Dispatch(ctx context.Context, comm domain.Communication) (domain.DispatchOutcome, error)
	RetryDelivery(ctx context.Context, communicationID uuid.UUID) (string, error)
	DispatchStatus(communicationID uuid.UUID) (domain.DeliveryStatus, error)
}

// Directory resolves tenant/user/role membership. It belongs to the host
// backend; the core only consumes it.
//
// Identity must return errors.ErrRecipientNotFound when the recipient does
// not exist under the tenant: the resolver drops unknown recipients and
// keeps going, while any other error is treated as the Directory being
// unreachable and aborts the whole resolution.
type Directory interface {
	MembersOfRole(ctx context.Context, tenantID, role string) ([]domain.RecipientIdentity, error)
	Identity(ctx context.Context, tenantID, recipientID string) (domain.RecipientIdentity, error)
}

// Store is the durable record of communications and room messages. The
// dispatch path only reads from it; writes happen in the creation facade
// standing in for the host backend's controllers.
type Store interface {
	Communication(ctx context.Context, id uuid.UUID) (domain.Communication, error)
	SaveCommunication(ctx context.Context, comm domain.Communication) error
	SaveRoomMessage(ctx context.Context, room domain.RoomID, senderID, content string, at time.Time) error
}

// DeliveryChannel is the external asynchronous channel (email in this
// system). A non-nil error means the attempt failed and the worker's retry
// policy applies.
type DeliveryChannel interface {
	Send(ctx context.Context, address, subject, body string) error
}
