package runtime

import (
	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Dispatcher coordinates fan-out on "communication created" and "retry
// requested": it resolves the audience once, hands the live part to the
// broadcaster and the durable part to the job repository.
type Dispatcher struct {
	log         *slog.Logger
	resolver    contract.IResolver
	broadcaster contract.IBroadcaster
	jobs        contract.IJobRepository
	store       contract.Store
}

var _ contract.IDispatcher = (*Dispatcher)(nil)

func NewDispatcher(
	log *slog.Logger,
	resolver contract.IResolver,
	broadcaster contract.IBroadcaster,
	jobs contract.IJobRepository,
	store contract.Store,
) *Dispatcher {
	return &Dispatcher{
		log:         log,
		resolver:    resolver,
		broadcaster: broadcaster,
		jobs:        jobs,
		store:       store,
	}
}

// DeliveryJobID derives the job id deterministically from the
// communication id, so a duplicate create request cannot double-enqueue.
func DeliveryJobID(communicationID uuid.UUID) string {
	return "deliver:" + communicationID.String()
}

func retryJobID(communicationID uuid.UUID) string {
	return fmt.Sprintf("deliver:%s:retry:%s", communicationID, uuid.NewString())
}

// Dispatch resolves the audience, pushes the live event to the tenant room
// and enqueues exactly one delivery job. If the Directory is unreachable
// the whole operation fails and nothing is broadcast or enqueued. The call
// returns as soon as the job is accepted; it never waits for delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, comm domain.Communication) (domain.DispatchOutcome, error) {
	resolved, err := d.resolver.Resolve(ctx, comm.TenantID, comm.Audience)
	if err != nil {
		return domain.DispatchOutcome{}, fmt.Errorf("resolving audience for communication %s: %w", comm.ID, err)
	}

	// Live push is best-effort and may silently reach zero recipients.
	d.broadcaster.PushToTenant(ctx, comm.TenantID, event.CommunicationCreated{
		CommunicationID: comm.ID,
		TenantID:        comm.TenantID,
		Title:           comm.Title,
		Type:            string(comm.Type),
		Roles:           comm.Audience.Roles,
		Recipients:      len(resolved.Members),
		At:              time.Now().UTC(),
	})

	job := d.newJob(DeliveryJobID(comm.ID), comm.ID, resolved)
	accepted, err := d.jobs.Enqueue(job)
	if err != nil {
		return domain.DispatchOutcome{}, fmt.Errorf("enqueuing delivery job %s: %w", job.ID, err)
	}
	if !accepted {
		d.log.Info(fmt.Sprintf("Delivery job %s already enqueued, duplicate dispatch ignored", job.ID))
	}

	return domain.DispatchOutcome{JobID: job.ID, Recipients: len(resolved.Members)}, nil
}

// RetryDelivery mints a brand-new job for an already dispatched
// communication. The audience is re-resolved fresh, so membership changes
// since the original failure are picked up. The old job is never touched;
// the job log stays an append-only audit trail.
func (d *Dispatcher) RetryDelivery(ctx context.Context, communicationID uuid.UUID) (string, error) {
	comm, err := d.store.Communication(ctx, communicationID)
	if err != nil {
		return "", fmt.Errorf("loading communication %s: %w", communicationID, err)
	}

	resolved, err := d.resolver.Resolve(ctx, comm.TenantID, comm.Audience)
	if err != nil {
		return "", fmt.Errorf("re-resolving audience for communication %s: %w", communicationID, err)
	}

	job := d.newJob(retryJobID(communicationID), communicationID, resolved)
	if _, err := d.jobs.Enqueue(job); err != nil {
		return "", fmt.Errorf("enqueuing retry job %s: %w", job.ID, err)
	}

	d.log.Info(fmt.Sprintf("Operator retry enqueued for communication %s", communicationID), "job", job.ID)
	return job.ID, nil
}

// DispatchStatus reports the latest job's state for a communication.
func (d *Dispatcher) DispatchStatus(communicationID uuid.UUID) (domain.DeliveryStatus, error) {
	job, err := d.jobs.LatestForCommunication(communicationID)
	if err != nil {
		return domain.DeliveryStatus{}, err
	}
	return domain.DeliveryStatus{JobID: job.ID, Status: job.Status, Attempts: job.Attempts}, nil
}

func (d *Dispatcher) newJob(id string, communicationID uuid.UUID, resolved domain.ResolvedAudience) domain.DeliveryJob {
	now := time.Now().UTC()
	return domain.DeliveryJob{
		ID:              id,
		CommunicationID: communicationID,
		Targets:         resolved.Addresses(),
		Status:          domain.JobPending,
		NextEligibleAt:  now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
