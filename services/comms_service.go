package services

import (
	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CreateCommunicationInput is the creation DTO, validated before anything
// is persisted or dispatched.
type CreateCommunicationInput struct {
	TenantID   string `validate:"required"`
	SenderID   string `validate:"required"`
	Title      string `validate:"required,max=200"`
	Body       string `validate:"required"`
	Type       string `validate:"required,oneof=ANNOUNCEMENT CIRCULAR ALERT"`
	Roles      []string
	Recipients []string
}

type ICommsService interface {
	CreateCommunication(ctx context.Context, input CreateCommunicationInput) (domain.Communication, domain.DispatchOutcome, error)
	PostRoomMessage(ctx context.Context, senderID string, room domain.RoomID, content string) error
	RetryDelivery(ctx context.Context, communicationID uuid.UUID) (string, error)
	DispatchStatus(communicationID uuid.UUID) (domain.DeliveryStatus, error)
}

// CommsService is the application facade standing in for the host
// backend's controllers: it validates, persists and hands over to the
// dispatcher. The caller gets success as soon as the delivery job is
// durably enqueued, regardless of eventual delivery outcome.
type CommsService struct {
	validate    *validator.Validate
	store       contract.Store
	dispatcher  contract.IDispatcher
	broadcaster contract.IBroadcaster
	log         *slog.Logger
}

var _ ICommsService = (*CommsService)(nil)

func NewCommsService(store contract.Store, dispatcher contract.IDispatcher, broadcaster contract.IBroadcaster, log *slog.Logger) *CommsService {
	return &CommsService{
		validate:    validator.New(),
		store:       store,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (s *CommsService) CreateCommunication(ctx context.Context, input CreateCommunicationInput) (domain.Communication, domain.DispatchOutcome, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Communication{}, domain.DispatchOutcome{}, fmt.Errorf("invalid communication: %w", err)
	}

	comm := domain.Communication{
		ID:       uuid.New(),
		TenantID: input.TenantID,
		SenderID: input.SenderID,
		Title:    input.Title,
		Body:     input.Body,
		Type:     domain.Type(input.Type),
		Audience: domain.Audience{
			Roles:      input.Roles,
			Recipients: input.Recipients,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.SaveCommunication(ctx, comm); err != nil {
		return domain.Communication{}, domain.DispatchOutcome{}, fmt.Errorf("persisting communication: %w", err)
	}

	outcome, err := s.dispatcher.Dispatch(ctx, comm)
	if err != nil {
		return domain.Communication{}, domain.DispatchOutcome{}, err
	}

	s.log.Info(fmt.Sprintf("Communication %s dispatched", comm.ID),
		"tenant", comm.TenantID, "job", outcome.JobID, "recipients", outcome.Recipients)
	return comm, outcome, nil
}

// PostRoomMessage persists a client message and then forwards it to the
// room's live sessions.
func (s *CommsService) PostRoomMessage(ctx context.Context, senderID string, room domain.RoomID, content string) error {
	at := time.Now().UTC()
	if err := s.store.SaveRoomMessage(ctx, room, senderID, content, at); err != nil {
		return fmt.Errorf("persisting room message: %w", err)
	}
	s.broadcaster.PushToRoom(ctx, room, event.RoomMessage{
		Room:     room,
		SenderID: senderID,
		Content:  content,
		At:       at,
	})
	return nil
}

func (s *CommsService) RetryDelivery(ctx context.Context, communicationID uuid.UUID) (string, error) {
	return s.dispatcher.RetryDelivery(ctx, communicationID)
}

func (s *CommsService) DispatchStatus(communicationID uuid.UUID) (domain.DeliveryStatus, error) {
	return s.dispatcher.DispatchStatus(communicationID)
}
