package workers

import (
	"comms-hub/contract"
	"comms-hub/domain/event"
	"context"
	"log/slog"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// TelemetryWorker drains the technical event channel and logs for operator
// visibility. Permanent delivery failures surface here in addition to the
// status endpoint.
type TelemetryWorker struct {
	events chan event.DomainEvent
	log    *slog.Logger
}

func NewTelemetryWorker(events chan event.DomainEvent, log *slog.Logger) *TelemetryWorker {
	return &TelemetryWorker{events: events, log: log}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping telemetry worker")
			return ctx.Err()
		case e, ok := <-w.events:
			if !ok {
				return nil
			}
			switch evt := e.(type) {
			case event.DeliveryFailedPermanent:
				w.log.Error("Delivery failed permanently",
					"job", evt.JobID,
					"communication", evt.CommunicationID,
					"attempts", evt.Attempts,
					"last_error", evt.LastError)
			case event.WorkerRestartedAfterPanic:
				w.log.Warn("Worker restarted after panic", "worker", evt.WorkerName)
			default:
				w.log.Debug("Telemetry event", "event", e.EventName())
			}
		}
	}
}
