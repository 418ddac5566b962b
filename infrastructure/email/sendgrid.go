// Package email provides DeliveryChannel implementations for outbound
// mail: the Sendgrid transport for production and a console recorder for
// development and tests.
package email

import (
	"comms-hub/contract"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

type SendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	log        *slog.Logger
}

var _ contract.DeliveryChannel = (*SendgridService)(nil)

func NewSendgridService(key, fromName, fromAddress, appName string, log *slog.Logger) *SendgridService {
	return &SendgridService{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromAddress),
		subjPrefix: "[" + appName + "] ",
		log:        log,
	}
}

// Send pushes one message through the Sendgrid v3 API. A transport error
// or a non-2xx response is returned to the caller so the dispatch queue's
// retry policy applies.
func (svc *SendgridService) Send(ctx context.Context, address, subject, body string) error {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + subject
	p.AddTos(sgmail.NewEmail("", address))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", address, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email to %s: status %d: %s", address, res.StatusCode, res.Body)
	}
	return nil
}
