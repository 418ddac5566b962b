package workers

import (
	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/domain/event"
	errs "comms-hub/errors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Ensure *DeliveryWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*DeliveryWorker)(nil)

// DeliveryWorker drains the dispatch queue: it claims eligible jobs,
// attempts delivery to every target through the external channel, and
// applies the bounded retry policy. Several instances run under one
// supervisor; the repository's atomic claim keeps them from processing the
// same job twice.
//
// A job's target list is delivered as one unit for counting attempts, but
// each send is independent, so a retried job may re-send to targets that
// already succeeded. At-least-once, not exactly-once.
type DeliveryWorker struct {
	jobs      contract.IJobRepository
	channel   contract.DeliveryChannel
	store     contract.Store
	limiter   *rate.Limiter
	telemetry chan event.DomainEvent
	log       *slog.Logger

	pollInterval   time.Duration
	attemptTimeout time.Duration
	maxAttempts    int
	backoffBase    time.Duration
	backoffCap     time.Duration
	batchSize      int
}

func NewDeliveryWorker(
	jobs contract.IJobRepository,
	channel contract.DeliveryChannel,
	store contract.Store,
	limiter *rate.Limiter,
	telemetry chan event.DomainEvent,
	log *slog.Logger,
	pollInterval, attemptTimeout time.Duration,
	maxAttempts int,
	backoffBase, backoffCap time.Duration,
	batchSize int,
) *DeliveryWorker {
	return &DeliveryWorker{
		jobs:           jobs,
		channel:        channel,
		store:          store,
		limiter:        limiter,
		telemetry:      telemetry,
		log:            log,
		pollInterval:   pollInterval,
		attemptTimeout: attemptTimeout,
		maxAttempts:    maxAttempts,
		backoffBase:    backoffBase,
		backoffCap:     backoffCap,
		batchSize:      batchSize,
	}
}

func (w *DeliveryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping delivery worker")
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// drainOnce claims and processes every currently eligible job. Losing a
// claim race to a sibling worker is normal and skipped silently.
func (w *DeliveryWorker) drainOnce(ctx context.Context) error {
	due, err := w.jobs.NextDue(time.Now().UTC(), w.batchSize)
	if err != nil {
		return fmt.Errorf("fetching due jobs: %w", err)
	}

	for _, job := range due {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		claimed, err := w.jobs.Claim(job)
		if errors.Is(err, errs.ErrJobNotPending) {
			continue
		}
		if err != nil {
			w.log.Error("Claiming job failed", "job", job.ID, "error", err)
			continue
		}
		w.process(ctx, claimed)
	}
	return nil
}

// process runs exactly one attempt for a claimed job and records the
// resulting state transition.
func (w *DeliveryWorker) process(ctx context.Context, job domain.DeliveryJob) {
	job.Attempts++

	err := w.attempt(ctx, job)
	if err == nil {
		if err := w.jobs.MarkSucceeded(job); err != nil {
			w.log.Error("Marking job succeeded failed", "job", job.ID, "error", err)
			return
		}
		w.log.Info(fmt.Sprintf("Delivered job %s on attempt %d", job.ID, job.Attempts))
		return
	}

	job.LastError = err.Error()

	if job.Attempts < w.maxAttempts {
		next := time.Now().UTC().Add(Backoff(job.Attempts, w.backoffBase, w.backoffCap))
		if err := w.jobs.Requeue(job, next); err != nil {
			w.log.Error("Requeuing job failed", "job", job.ID, "error", err)
			return
		}
		w.log.Warn("Delivery attempt failed, retry scheduled",
			"job", job.ID, "attempt", job.Attempts, "next_eligible_at", next, "error", err)
		return
	}

	if err := w.jobs.MarkFailedPermanent(job); err != nil {
		w.log.Error("Marking job failed-permanent failed", "job", job.ID, "error", err)
		return
	}
	w.log.Error("Delivery permanently failed, retry ceiling reached",
		"job", job.ID, "attempts", job.Attempts, "error", err)
	w.emit(event.DeliveryFailedPermanent{
		JobID:           job.ID,
		CommunicationID: job.CommunicationID,
		Attempts:        job.Attempts,
		LastError:       job.LastError,
	})
}

// attempt sends the communication to every target under one per-attempt
// timeout. An empty target list trivially succeeds. Any target failure
// fails the attempt as a whole; the retry re-sends to all targets.
func (w *DeliveryWorker) attempt(ctx context.Context, job domain.DeliveryJob) error {
	if len(job.Targets) == 0 {
		return nil
	}

	attemptCtx, cancel := context.WithTimeout(ctx, w.attemptTimeout)
	defer cancel()

	comm, err := w.store.Communication(attemptCtx, job.CommunicationID)
	if err != nil {
		return fmt.Errorf("loading communication %s: %w", job.CommunicationID, err)
	}

	var failed int
	var lastErr error
	for _, address := range job.Targets {
		if err := w.limiter.Wait(attemptCtx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if err := w.channel.Send(attemptCtx, address, comm.Title, comm.Body); err != nil {
			w.log.Warn("Target send failed", "job", job.ID, "address", address, "error", err)
			failed++
			lastErr = err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d/%d targets failed: %w", failed, len(job.Targets), lastErr)
	}
	return nil
}

func (w *DeliveryWorker) emit(e event.DomainEvent) {
	if w.telemetry == nil {
		return
	}
	select {
	case w.telemetry <- e:
	default:
		w.log.Debug("Telemetry event lost", "event", e.EventName())
	}
}
