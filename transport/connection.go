// Package transport is the websocket session layer: it upgrades
// connections, authenticates them, feeds session events into the registry
// and forwards client frames into the application services.
package transport

import (
	"comms-hub/contract"
	"comms-hub/domain"
	"comms-hub/domain/event"
	errs "comms-hub/errors"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// envelope is the wire format for events pushed to a session.
type envelope struct {
	Event string            `json:"event"`
	Data  event.DomainEvent `json:"data"`
}

// Connection wraps a websocket and coordinates outbound writes via a
// buffered channel, so the broadcaster never blocks on a peer. It is the
// EventSink registered for the session.
type Connection struct {
	ID          domain.SessionID
	RecipientID string
	TenantID    string

	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
	log  *slog.Logger
}

var _ contract.EventSink = (*Connection)(nil)

func NewConnection(recipientID, tenantID string, ws *websocket.Conn, bufferSize int, log *slog.Logger) *Connection {
	return &Connection{
		ID:          domain.SessionID(uuid.NewString()),
		RecipientID: recipientID,
		TenantID:    tenantID,
		ws:          ws,
		send:        make(chan []byte, bufferSize),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Consume implements contract.EventSink: the event is serialized and
// buffered for the write loop. A full buffer means the peer is hopelessly
// behind; the connection is closed and the error tells the broadcaster to
// drop the session.
func (c *Connection) Consume(_ context.Context, e event.DomainEvent) error {
	payload, err := json.Marshal(envelope{Event: e.EventName(), Data: e})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return errs.ErrSessionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errs.ErrSendBufferFull
	}
}

// Close terminates the connection and stops the write loop.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.writeMessage(payload); err != nil {
				c.log.Debug("Write failed, closing session", "session", c.ID, "error", err)
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
