// internal/notifications/service.go

package notifications

import (
	"context"
	"log"

	"github.com/gatherly/gatherly-backend/internal/planning"
)

// Service delivers event lifecycle notifications to group members over the
// channels they opted into. It satisfies the planner's Notifier interface.
type Service struct {
	repo  Repository
	email EmailService
	sms   SMSService
}

func NewService(repo Repository, email EmailService, sms SMSService) *Service {
	return &Service{repo: repo, email: email, sms: sms}
}

func (s *Service) NotifyEventConfirmed(ctx context.Context, event *planning.Event, memberIDs []int64) error {
	return s.sendToMembers(ctx, memberIDs, func(c Contact) (*EmailNotification, *SMSNotification) {
		return confirmedEmail(c, event), nil
	})
}

func (s *Service) NotifyEventCancelled(ctx context.Context, event *planning.Event, memberIDs []int64) error {
	return s.sendToMembers(ctx, memberIDs, func(c Contact) (*EmailNotification, *SMSNotification) {
		return cancelledEmail(c, event), nil
	})
}

// NotifyEventReminder uses both channels: reminders are time-sensitive, so
// opted-in members also get an SMS.
func (s *Service) NotifyEventReminder(ctx context.Context, event *planning.Event, memberIDs []int64) error {
	return s.sendToMembers(ctx, memberIDs, func(c Contact) (*EmailNotification, *SMSNotification) {
		return reminderEmail(c, event), reminderSMS(c, event)
	})
}

func (s *Service) sendToMembers(ctx context.Context, memberIDs []int64, build func(Contact) (*EmailNotification, *SMSNotification)) error {
	contacts, err := s.repo.GetContacts(ctx, memberIDs)
	if err != nil {
		return err
	}

	var emails []*EmailNotification
	var texts []*SMSNotification
	for _, c := range contacts {
		email, text := build(c)
		if email != nil && c.EmailOptIn && c.Email != "" {
			emails = append(emails, email)
		}
		if text != nil && c.SMSOptIn {
			texts = append(texts, text)
		}
	}

	if len(emails) > 0 && s.email != nil {
		if err := s.email.SendBatchEmails(ctx, emails); err != nil {
			log.Printf("notifications: email batch failed: %v", err)
		}
	}
	if len(texts) > 0 && s.sms != nil {
		if err := s.sms.SendBatchSMS(ctx, texts); err != nil {
			log.Printf("notifications: sms batch failed: %v", err)
		}
	}

	return nil
}
