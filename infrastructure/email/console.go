package email

import (
	"comms-hub/contract"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type SentMessage struct {
	To      string
	Subject string
	Body    string
	At      time.Time
}

// ConsoleService logs outgoing mail instead of sending it and keeps an
// in-memory record, for development and tests.
type ConsoleService struct {
	mu     sync.Mutex
	sent   []SentMessage
	log    *slog.Logger
	silent bool
}

var _ contract.DeliveryChannel = (*ConsoleService)(nil)

func NewConsoleService(log *slog.Logger) *ConsoleService {
	return &ConsoleService{log: log}
}

// NewSilentConsoleService records without logging; used in tests.
func NewSilentConsoleService(log *slog.Logger) *ConsoleService {
	return &ConsoleService{log: log, silent: true}
}

func (svc *ConsoleService) Send(_ context.Context, address, subject, body string) error {
	svc.mu.Lock()
	svc.sent = append(svc.sent, SentMessage{To: address, Subject: subject, Body: body, At: time.Now().UTC()})
	svc.mu.Unlock()

	if !svc.silent {
		svc.log.Info(fmt.Sprintf("To: %s\nSubject: %s\n\n%s", address, subject, body))
	}
	return nil
}

// Sent returns a snapshot of everything recorded so far.
func (svc *ConsoleService) Sent() []SentMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]SentMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}
