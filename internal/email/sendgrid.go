package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridSender struct {
	key    string
	from   *sgmail.Email
	logger *slog.Logger
}

// NewSendgridSender delivers messages through the SendGrid v3 mail API.
func NewSendgridSender(apiKey, fromName, fromAddress string, logger *slog.Logger) Sender {
	return &sendgridSender{
		key:    apiKey,
		from:   sgmail.NewEmail(fromName, fromAddress),
		logger: logger,
	}
}

func (s *sendgridSender) Send(ctx context.Context, msg *Message) error {
	if !msg.HasRecipient() || !msg.HasContent() {
		return ErrEmptyMessage
	}

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected email: status %d, body %s", res.StatusCode, res.Body)
	}

	s.logger.Info("report email sent", "to", msg.ToAddress, "subject", msg.Subject)
	return nil
}

func (s *sendgridSender) prepare(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)

	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	return m
}
