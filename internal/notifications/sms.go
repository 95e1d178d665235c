// internal/notifications/sms.go

package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends text-message notifications.
type SMSService interface {
	SendSMS(ctx context.Context, notification *SMSNotification) error
	SendBatchSMS(ctx context.Context, notifications []*SMSNotification) error
}

// TwilioSMSService sends SMS through Twilio.
type TwilioSMSService struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMSService(accountSID, authToken, from string) (SMSService, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("incomplete Twilio configuration")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSMSService{
		client: client,
		from:   from,
	}, nil
}

func (s *TwilioSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(notification.To)
	params.SetFrom(s.from)
	params.SetBody(notification.Message)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send SMS to %s: %v", notification.To, err)
		return err
	}

	if resp.Sid != nil {
		log.Printf("Successfully sent SMS to %s with SID: %s", notification.To, *resp.Sid)
	}

	return nil
}

func (s *TwilioSMSService) SendBatchSMS(ctx context.Context, notifications []*SMSNotification) error {
	for _, notification := range notifications {
		if err := s.SendSMS(ctx, notification); err != nil {
			log.Printf("Failed to send SMS in batch: %v", err)
			// Continue with other messages
		}
	}
	return nil
}

// MockSMSService records messages instead of sending them.
type MockSMSService struct {
	SentMessages []*SMSNotification
}

func NewMockSMSService() *MockSMSService {
	return &MockSMSService{
		SentMessages: make([]*SMSNotification, 0),
	}
}

func (m *MockSMSService) SendSMS(ctx context.Context, notification *SMSNotification) error {
	m.SentMessages = append(m.SentMessages, notification)
	log.Printf("Mock: Sending SMS to %s: %s", notification.To, notification.Message)
	return nil
}

func (m *MockSMSService) SendBatchSMS(ctx context.Context, notifications []*SMSNotification) error {
	for _, n := range notifications {
		m.SendSMS(ctx, n)
	}
	return nil
}
