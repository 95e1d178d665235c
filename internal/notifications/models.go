// internal/notifications/models.go

package notifications

// EmailNotification is a single outbound email.
type EmailNotification struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// SMSNotification is a single outbound text message.
type SMSNotification struct {
	To      string
	Message string
}

// Contact is a member's delivery information with their channel opt-ins.
type Contact struct {
	UserID      int64   `db:"user_id"`
	DisplayName string  `db:"display_name"`
	Email       string  `db:"email"`
	Phone       *string `db:"phone"`
	EmailOptIn  bool    `db:"email_opt_in"`
	SMSOptIn    bool    `db:"sms_opt_in"`
}
