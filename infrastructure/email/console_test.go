package email

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsoleService_Records_Sent_Mail(t *testing.T) {
	req := require.New(t)
	svc := NewSilentConsoleService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req.NoError(svc.Send(context.Background(), "u1@school.example", "Snow day", "School closed"))
	req.NoError(svc.Send(context.Background(), "u2@school.example", "Snow day", "School closed"))

	sent := svc.Sent()
	req.Len(sent, 2)
	req.Equal("u1@school.example", sent[0].To)
	req.Equal("Snow day", sent[0].Subject)
}
