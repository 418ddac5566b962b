package services

import (
	"comms-hub/domain"
	"comms-hub/domain/event"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	saved    []domain.Communication
	messages []string
	failSave bool
}

func (s *fakeStore) Communication(_ context.Context, _ uuid.UUID) (domain.Communication, error) {
	return domain.Communication{}, nil
}

func (s *fakeStore) SaveCommunication(_ context.Context, comm domain.Communication) error {
	if s.failSave {
		return fmt.Errorf("disk full")
	}
	s.saved = append(s.saved, comm)
	return nil
}

func (s *fakeStore) SaveRoomMessage(_ context.Context, _ domain.RoomID, _, content string, _ time.Time) error {
	if s.failSave {
		return fmt.Errorf("disk full")
	}
	s.messages = append(s.messages, content)
	return nil
}

type fakeDispatcher struct {
	dispatched []domain.Communication
	outcome    domain.DispatchOutcome
}

func (d *fakeDispatcher) Dispatch(_ context.Context, comm domain.Communication) (domain.DispatchOutcome, error) {
	d.dispatched = append(d.dispatched, comm)
	return d.outcome, nil
}

func (d *fakeDispatcher) RetryDelivery(_ context.Context, _ uuid.UUID) (string, error) {
	return "", nil
}

func (d *fakeDispatcher) DispatchStatus(_ uuid.UUID) (domain.DeliveryStatus, error) {
	return domain.DeliveryStatus{}, nil
}

type fakeBroadcaster struct {
	rooms []domain.RoomID
}

func (b *fakeBroadcaster) PushToTenant(_ context.Context, _ string, _ event.DomainEvent) {}

func (b *fakeBroadcaster) PushToRoom(_ context.Context, room domain.RoomID, _ event.DomainEvent) {
	b.rooms = append(b.rooms, room)
}

func (b *fakeBroadcaster) PushToRecipient(_ context.Context, _ string, _ event.DomainEvent) {}

func validInput() CreateCommunicationInput {
	return CreateCommunicationInput{
		TenantID: "T1",
		SenderID: "admin",
		Title:    "Field trip",
		Body:     "Permission slips due Friday",
		Type:     "CIRCULAR",
		Roles:    []string{"parent"},
	}
}

func TestCommsService_CreateCommunication_Persists_Then_Dispatches(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{outcome: domain.DispatchOutcome{JobID: "deliver:x", Recipients: 3}}
	service := NewCommsService(store, dispatcher, &fakeBroadcaster{}, testLogger())

	comm, outcome, err := service.CreateCommunication(context.Background(), validInput())

	req.NoError(err)
	req.NotEqual(uuid.Nil, comm.ID)
	req.Equal(domain.TypeCircular, comm.Type)
	req.Equal("T1", comm.TenantID)

	// Persisted first, dispatched second, same record both times
	req.Len(store.saved, 1)
	req.Len(dispatcher.dispatched, 1)
	req.Equal(store.saved[0].ID, dispatcher.dispatched[0].ID)

	req.Equal("deliver:x", outcome.JobID)
	req.Equal(3, outcome.Recipients)
}

func TestCommsService_CreateCommunication_Rejects_Invalid_Input(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	dispatcher := &fakeDispatcher{}
	service := NewCommsService(store, dispatcher, &fakeBroadcaster{}, testLogger())

	cases := map[string]func(*CreateCommunicationInput){
		"missing tenant": func(i *CreateCommunicationInput) { i.TenantID = "" },
		"missing title":  func(i *CreateCommunicationInput) { i.Title = "" },
		"unknown type":   func(i *CreateCommunicationInput) { i.Type = "NEWSLETTER" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validInput()
			mutate(&input)

			_, _, err := service.CreateCommunication(context.Background(), input)

			require.Error(t, err)
		})
	}

	// Invalid input never reaches the store or the dispatcher
	req.Empty(store.saved)
	req.Empty(dispatcher.dispatched)
}

func TestCommsService_CreateCommunication_Persist_Failure_Skips_Dispatch(t *testing.T) {
	req := require.New(t)
	dispatcher := &fakeDispatcher{}
	service := NewCommsService(&fakeStore{failSave: true}, dispatcher, &fakeBroadcaster{}, testLogger())

	_, _, err := service.CreateCommunication(context.Background(), validInput())

	req.Error(err)
	req.Empty(dispatcher.dispatched)
}

func TestCommsService_PostRoomMessage_Persists_Then_Broadcasts(t *testing.T) {
	req := require.New(t)
	store := &fakeStore{}
	broadcaster := &fakeBroadcaster{}
	service := NewCommsService(store, &fakeDispatcher{}, broadcaster, testLogger())

	err := service.PostRoomMessage(context.Background(), "U1", domain.RoomID("class:7b"), "hello")

	req.NoError(err)
	req.Equal([]string{"hello"}, store.messages)
	req.Equal([]domain.RoomID{domain.RoomID("class:7b")}, broadcaster.rooms)
}

func TestCommsService_PostRoomMessage_Persist_Failure_Skips_Broadcast(t *testing.T) {
	req := require.New(t)
	broadcaster := &fakeBroadcaster{}
	service := NewCommsService(&fakeStore{failSave: true}, &fakeDispatcher{}, broadcaster, testLogger())

	err := service.PostRoomMessage(context.Background(), "U1", domain.RoomID("class:7b"), "hello")

	req.Error(err)
	req.Empty(broadcaster.rooms)
}
