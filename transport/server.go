package transport

import (
	"comms-hub/auth"
	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/services"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// clientFrame is what a connected client may send: join a room or post a
// message to one.
type clientFrame struct {
	Type    string `json:"type"` // "join" | "message"
	Room    string `json:"room"`
	Content string `json:"content,omitempty"`
}

// Server owns the websocket endpoint. On connect it validates the session
// token, registers the session; on disconnect it unregisters. Client
// messages are persisted by the Store and then forwarded to the room via
// the broadcaster, both behind the comms service.
type Server struct {
	upgrader   websocket.Upgrader
	registry   contract.IRegistry
	comms      services.ICommsService
	secret     []byte
	bufferSize int
	log        *slog.Logger
}

func NewServer(registry contract.IRegistry, comms services.ICommsService, secret []byte, bufferSize int, log *slog.Logger) *Server {
	return &Server{
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		registry:   registry,
		comms:      comms,
		secret:     secret,
		bufferSize: bufferSize,
		log:        log,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(s.secret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(claims.UserID, claims.TenantID, ws, s.bufferSize, s.log)
	conn.Start()
	s.registry.Connect(conn.ID, claims.UserID, claims.TenantID, conn)
	s.log.Info(fmt.Sprintf("Session %s connected", conn.ID), "recipient", claims.UserID, "tenant", claims.TenantID)

	go s.readLoop(conn, ws)
}

func (s *Server) readLoop(conn *Connection, ws *websocket.Conn) {
	defer func() {
		s.registry.Disconnect(conn.ID)
		conn.Close(websocket.CloseNormalClosure, "session ended")
		s.log.Info(fmt.Sprintf("Session %s disconnected", conn.ID), "recipient", conn.RecipientID)
	}()

	for {
		var frame clientFrame
		if err := ws.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "join":
			s.registry.JoinRoom(conn.ID, domain.RoomID(frame.Room))
		case "message":
			// The request context dies with the HTTP hijack; the session is
			// the lifetime that matters here.
			if err := s.comms.PostRoomMessage(context.Background(), conn.RecipientID, domain.RoomID(frame.Room), frame.Content); err != nil {
				s.log.Warn("Posting room message failed", "session", conn.ID, "room", frame.Room, "error", err)
			}
		default:
			s.log.Debug("Unknown client frame", "session", conn.ID, "type", frame.Type)
		}
	}
}

// Drain force-closes every live session, for shutdown.
func (s *Server) Drain(drainable interface{ Drain() []contract.EventSink }) {
	for _, sink := range drainable.Drain() {
		if conn, ok := sink.(*Connection); ok {
			conn.Close(websocket.CloseGoingAway, "server shutting down")
		}
	}
}
