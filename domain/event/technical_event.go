package event

import "github.com/google/uuid"

// Technical events are emitted on the telemetry channel for operator
// visibility. They never reach client sessions.

type DeliveryFailedPermanent struct {
	JobID           string
	CommunicationID uuid.UUID
	Attempts        int
	LastError       string
}

func (DeliveryFailedPermanent) EventName() string { return "delivery.failed_permanent" }

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

func (WorkerRestartedAfterPanic) EventName() string { return "worker.restarted_after_panic" }
