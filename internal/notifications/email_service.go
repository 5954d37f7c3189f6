package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"spacehub/internal/shared/config"
)

// EmailService sends booking lifecycle emails.
type EmailService interface {
	SendBookingNotification(ctx context.Context, notification *BookingNotification) error
}

// SMTPConfig holds SMTP configuration.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// NewSMTPConfig builds SMTP settings from application config.
func NewSMTPConfig(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  "SpaceHub",
		Timeout:   30 * time.Second,
	}
}

// SMTPEmailService delivers booking emails over SMTP.
type SMTPEmailService struct {
	config   *SMTPConfig
	template *template.Template
}

const bookingEmailTemplate = `
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2>{{.Heading}}</h2>
	<p>Hi {{.Name}},</p>
	<p>{{.Message}}</p>
	<table cellpadding="4">
		<tr><td><b>Reference</b></td><td>{{.BookingRef}}</td></tr>
		<tr><td><b>From</b></td><td>{{.StartTime}}</td></tr>
		<tr><td><b>To</b></td><td>{{.EndTime}}</td></tr>
		<tr><td><b>Total</b></td><td>{{printf "%.2f" .TotalAmount}}</td></tr>
	</table>
	<p>— The SpaceHub team</p>
</body>
</html>
`

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return nil, fmt.Errorf("SMTP port must be between 1 and 65535")
	}

	tmpl, err := template.New("booking").Parse(bookingEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email template: %w", err)
	}

	return &SMTPEmailService{
		config:   config,
		template: tmpl,
	}, nil
}

func (s *SMTPEmailService) SendBookingNotification(ctx context.Context, notification *BookingNotification) error {
	if notification.RecipientEmail == "" {
		return fmt.Errorf("notification has no recipient email")
	}

	body, err := s.renderBody(notification)
	if err != nil {
		return err
	}

	msg := s.buildMessage(notification.RecipientEmail, notification.Subject(), body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.config.FromEmail, []string{notification.RecipientEmail}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", notification.RecipientEmail, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.config.Timeout):
		return fmt.Errorf("timed out sending email to %s", notification.RecipientEmail)
	}
}

func (s *SMTPEmailService) renderBody(n *BookingNotification) (string, error) {
	data := struct {
		Heading     string
		Name        string
		Message     string
		BookingRef  string
		StartTime   string
		EndTime     string
		TotalAmount float64
	}{
		Heading:     n.Subject(),
		Name:        n.RecipientName,
		Message:     eventMessage(n.Event),
		BookingRef:  n.BookingRef,
		StartTime:   n.StartTime.Format("Mon, 02 Jan 2006 15:04 MST"),
		EndTime:     n.EndTime.Format("Mon, 02 Jan 2006 15:04 MST"),
		TotalAmount: n.TotalAmount,
	}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email body: %w", err)
	}
	return buf.String(), nil
}

func eventMessage(event string) string {
	switch event {
	case EventBookingCreated:
		return "Your room is on hold. Complete payment to confirm your booking before the hold expires."
	case EventBookingConfirmed:
		return "Payment received. Your booking is confirmed, see you there!"
	case EventBookingCancelled:
		return "Your booking has been cancelled. If a payment was captured it will be refunded."
	case EventBookingExpired:
		return "Your hold expired before payment was completed, so the booking was released."
	case EventBookingCompleted:
		return "Your booking period has ended. We hope the space worked out for you."
	default:
		return "There is an update on your booking."
	}
}

func (s *SMTPEmailService) buildMessage(to, subject, htmlBody string) []byte {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return []byte(msg.String())
}
