// internal/notifications/email.go

package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends email notifications.
type EmailService interface {
	SendEmail(ctx context.Context, notification *EmailNotification) error
	SendBatchEmails(ctx context.Context, notifications []*EmailNotification) error
}

// SendGridEmailService sends email through the SendGrid API.
type SendGridEmailService struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridEmailService(apiKey, from, fromName string) (EmailService, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("incomplete SendGrid configuration")
	}
	if fromName == "" {
		fromName = "Gatherly"
	}

	return &SendGridEmailService{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SendGridEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", notification.To)
	message := mail.NewSingleEmail(from, notification.Subject, to, notification.Body, notification.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("Failed to send email to %s: %v", notification.To, err)
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *SendGridEmailService) SendBatchEmails(ctx context.Context, notifications []*EmailNotification) error {
	for _, notification := range notifications {
		if err := s.SendEmail(ctx, notification); err != nil {
			log.Printf("Failed to send email in batch: %v", err)
			// Continue with other emails
		}
	}
	return nil
}

// MockEmailService records emails instead of sending them. Used in tests
// and local development.
type MockEmailService struct {
	SentEmails []*EmailNotification
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{
		SentEmails: make([]*EmailNotification, 0),
	}
}

func (m *MockEmailService) SendEmail(ctx context.Context, notification *EmailNotification) error {
	m.SentEmails = append(m.SentEmails, notification)
	log.Printf("Mock: Sending email to %s: %s", notification.To, notification.Subject)
	return nil
}

func (m *MockEmailService) SendBatchEmails(ctx context.Context, notifications []*EmailNotification) error {
	for _, n := range notifications {
		m.SendEmail(ctx, n)
	}
	return nil
}
