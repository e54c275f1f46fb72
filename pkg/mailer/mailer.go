package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pinned-app/pinned/pkg/logger"
)

// Config holds SMTP connection settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer sends plain-text notification emails over SMTP
type Mailer struct {
	config Config
}

// New creates a new mailer
func New(config Config) *Mailer {
	return &Mailer{config: config}
}

// Send delivers a single plain-text message to one recipient
func (m *Mailer) Send(to, subject, body string) error {
	addr := m.config.Host + ":" + m.config.Port

	var msg strings.Builder
	msg.WriteString("From: " + m.config.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	logger.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Msg("Notification email sent")
	return nil
}
