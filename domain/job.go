package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending         JobStatus = "PENDING"
	JobDelivering      JobStatus = "DELIVERING"
	JobSucceeded       JobStatus = "SUCCEEDED"
	JobFailedPermanent JobStatus = "FAILED_PERMANENT"
)

// DeliveryJob is one durable, retriable unit of asynchronous delivery work.
// Created at enqueue time, mutated only by dispatch queue workers. A job that
// reaches the retry ceiling becomes FAILED_PERMANENT and is never auto-retried;
// an operator retry mints a brand-new job id instead of mutating history.
type DeliveryJob struct {
	ID              string
	CommunicationID uuid.UUID
	Targets         []string
	Attempts        int
	NextEligibleAt  time.Time
	Status          JobStatus
	LastError       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the job has reached a final state and must never
// be delivered again under the same id.
func (j DeliveryJob) Terminal() bool {
	return j.Status == JobSucceeded || j.Status == JobFailedPermanent
}

// DispatchOutcome is what the caller gets back as soon as the delivery job
// has been durably accepted; it says nothing about eventual delivery.
type DispatchOutcome struct {
	JobID      string
	Recipients int
}

// DeliveryStatus is the operator-facing view of a communication's latest job.
type DeliveryStatus struct {
	JobID    string
	Status   JobStatus
	Attempts int
}
