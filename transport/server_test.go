package transport

import (
	"comms-hub/auth"
	"comms-hub/domain"
	"comms-hub/domain/event"
	"comms-hub/runtime"
	"comms-hub/services"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubComms records posted messages and forwards them to the room, standing
// in for the full application service.
type stubComms struct {
	broadcaster *runtime.Broadcaster
	mu          sync.Mutex
	posts       []string
}

func (s *stubComms) CreateCommunication(_ context.Context, _ services.CreateCommunicationInput) (domain.Communication, domain.DispatchOutcome, error) {
	return domain.Communication{}, domain.DispatchOutcome{}, nil
}

func (s *stubComms) PostRoomMessage(ctx context.Context, senderID string, room domain.RoomID, content string) error {
	s.mu.Lock()
	s.posts = append(s.posts, content)
	s.mu.Unlock()
	s.broadcaster.PushToRoom(ctx, room, event.RoomMessage{Room: room, SenderID: senderID, Content: content, At: time.Now().UTC()})
	return nil
}

func (s *stubComms) RetryDelivery(_ context.Context, _ uuid.UUID) (string, error) {
	return "", nil
}

func (s *stubComms) DispatchStatus(_ uuid.UUID) (domain.DeliveryStatus, error) {
	return domain.DeliveryStatus{}, nil
}

func (s *stubComms) posted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.posts...)
}

type wsFixture struct {
	registry    *runtime.Registry
	broadcaster *runtime.Broadcaster
	comms       *stubComms
	url         string
}

func newWsFixture(t *testing.T) *wsFixture {
	log := testLogger()
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(registry, log)
	comms := &stubComms{broadcaster: broadcaster}

	srv := httptest.NewServer(NewServer(registry, comms, testSecret, 16, log))
	t.Cleanup(srv.Close)

	return &wsFixture{
		registry:    registry,
		broadcaster: broadcaster,
		comms:       comms,
		url:         "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func dial(t *testing.T, f *wsFixture, userID, tenantID string) *websocket.Conn {
	token, err := auth.GenerateToken(testSecret, userID, tenantID, nil, time.Hour)
	require.NoError(t, err)

	ws, _, err := websocket.DefaultDialer.Dial(f.url+"/?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) (string, json.RawMessage) {
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&received))
	return received.Event, received.Data
}

func TestServer_Rejects_Invalid_Token(t *testing.T) {
	req := require.New(t)
	f := newWsFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.url+"/?token=garbage", nil)

	req.Error(err)
	req.Equal(401, resp.StatusCode)
}

func TestServer_Connected_Session_Receives_Tenant_Broadcasts(t *testing.T) {
	req := require.New(t)
	f := newWsFixture(t)

	ws := dial(t, f, "U1", "T1")

	// The session lands in the registry and its tenant room
	req.Eventually(func() bool {
		return len(f.registry.SessionsFor("U1")) == 1
	}, time.Second, 10*time.Millisecond)

	// When a communication event is pushed to the tenant
	communicationID := uuid.New()
	f.broadcaster.PushToTenant(context.Background(), "T1", event.CommunicationCreated{
		CommunicationID: communicationID,
		TenantID:        "T1",
		Title:           "Snow day",
		Type:            string(domain.TypeAlert),
	})

	// Then the client reads it as a typed envelope
	name, data := readEnvelope(t, ws)
	req.Equal("communication.created", name)

	var payload event.CommunicationCreated
	req.NoError(json.Unmarshal(data, &payload))
	req.Equal(communicationID, payload.CommunicationID)
	req.Equal("Snow day", payload.Title)
}

func TestServer_Client_Message_Is_Persisted_And_Echoed_To_The_Room(t *testing.T) {
	req := require.New(t)
	f := newWsFixture(t)

	ws := dial(t, f, "U1", "T1")
	req.Eventually(func() bool {
		return len(f.registry.SessionsFor("U1")) == 1
	}, time.Second, 10*time.Millisecond)

	// Given the client joined an ad-hoc room
	req.NoError(ws.WriteJSON(map[string]string{"type": "join", "room": "class:7b"}))
	req.Eventually(func() bool {
		return len(f.registry.SessionsInRoom(domain.RoomID("class:7b"))) == 1
	}, time.Second, 10*time.Millisecond)

	// When it posts a message to that room
	req.NoError(ws.WriteJSON(map[string]string{"type": "message", "room": "class:7b", "content": "hello"}))

	// Then the message went through the service and comes back live
	name, data := readEnvelope(t, ws)
	req.Equal("room.message", name)

	var payload event.RoomMessage
	req.NoError(json.Unmarshal(data, &payload))
	req.Equal("hello", payload.Content)
	req.Equal("U1", payload.SenderID)
	req.Equal([]string{"hello"}, f.comms.posted())
}

func TestServer_Disconnect_Removes_The_Session(t *testing.T) {
	req := require.New(t)
	f := newWsFixture(t)

	ws := dial(t, f, "U1", "T1")
	req.Eventually(func() bool {
		return len(f.registry.SessionsFor("U1")) == 1
	}, time.Second, 10*time.Millisecond)

	req.NoError(ws.Close())

	req.Eventually(func() bool {
		return len(f.registry.SessionsFor("U1")) == 0
	}, time.Second, 10*time.Millisecond)
}
