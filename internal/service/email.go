package service

import (
	"context"
	"fmt"

	"ubertool-booking/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridSender struct {
	client    mailClient
	fromEmail string
	fromName  string
}

// NewEmailSender returns a SendGrid backed sender, or one that only logs when apiKey is empty.
func NewEmailSender(apiKey, fromEmail, fromName string) EmailSender {
	if apiKey == "" {
		return logEmailSender{}
	}
	return &sendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridSender) Send(ctx context.Context, toEmail, toName, subject, plainText, html string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logEmailSender struct{}

func (logEmailSender) Send(_ context.Context, toEmail, _, subject, _, _ string) error {
	logger.Info("Email delivery disabled, dropping message", "to", toEmail, "subject", subject)
	return nil
}
