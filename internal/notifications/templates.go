// internal/notifications/templates.go

package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/gatherly/gatherly-backend/internal/planning"
)

const eventEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
    <h1 style="color: #2d6a4f;">{{.Title}}</h1>
    <p>Hi {{.Name}},</p>
    <p>{{.Message}}</p>
    <table style="border-collapse: collapse; margin: 16px 0;">
        <tr><td style="padding: 4px 12px 4px 0;"><strong>Event</strong></td><td>{{.EventTitle}}</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;"><strong>When</strong></td><td>{{.When}}</td></tr>
    </table>
    <p style="color: #666; font-size: 13px;">You are receiving this because you belong to a Gatherly group.</p>
</body>
</html>
`

type emailData struct {
	Title      string
	Name       string
	Message    string
	EventTitle string
	When       string
}

func renderEventEmail(data emailData) (string, error) {
	tmpl, err := template.New("event").Parse(eventEmailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatWhen(event *planning.Event) string {
	return fmt.Sprintf("%s to %s (UTC)",
		event.Start.Format("Mon, 02 Jan 2006 15:04"),
		event.End.Format("15:04"))
}

func confirmedEmail(contact Contact, event *planning.Event) *EmailNotification {
	data := emailData{
		Title:      "Event confirmed",
		Name:       contact.DisplayName,
		Message:    "Your group confirmed an event. See you there!",
		EventTitle: event.Title,
		When:       formatWhen(event),
	}
	html, _ := renderEventEmail(data)
	return &EmailNotification{
		To:      contact.Email,
		Subject: fmt.Sprintf("Confirmed: %s", event.Title),
		Body:    fmt.Sprintf("%s is confirmed for %s.", event.Title, formatWhen(event)),
		HTML:    html,
	}
}

func cancelledEmail(contact Contact, event *planning.Event) *EmailNotification {
	data := emailData{
		Title:      "Event cancelled",
		Name:       contact.DisplayName,
		Message:    "An event your group planned has been cancelled.",
		EventTitle: event.Title,
		When:       formatWhen(event),
	}
	html, _ := renderEventEmail(data)
	return &EmailNotification{
		To:      contact.Email,
		Subject: fmt.Sprintf("Cancelled: %s", event.Title),
		Body:    fmt.Sprintf("%s (%s) was cancelled.", event.Title, formatWhen(event)),
		HTML:    html,
	}
}

func reminderEmail(contact Contact, event *planning.Event) *EmailNotification {
	data := emailData{
		Title:      "Event reminder",
		Name:       contact.DisplayName,
		Message:    fmt.Sprintf("Starting %s.", humanUntil(event.Start)),
		EventTitle: event.Title,
		When:       formatWhen(event),
	}
	html, _ := renderEventEmail(data)
	return &EmailNotification{
		To:      contact.Email,
		Subject: fmt.Sprintf("Reminder: %s", event.Title),
		Body:    fmt.Sprintf("Reminder: %s starts %s.", event.Title, humanUntil(event.Start)),
		HTML:    html,
	}
}

func reminderSMS(contact Contact, event *planning.Event) *SMSNotification {
	if contact.Phone == nil {
		return nil
	}
	return &SMSNotification{
		To:      *contact.Phone,
		Message: fmt.Sprintf("Gatherly: %s starts %s.", event.Title, humanUntil(event.Start)),
	}
}

func humanUntil(t time.Time) string {
	d := time.Until(t).Round(time.Minute)
	if d <= 0 {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("in %d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("in %.0f hours", d.Hours())
}
