package outbox

import (
	"os"
	"strconv"

	mail "github.com/go-mail/mail"
)

// Mailer delivers rendered notifications over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewMailerFromEnv builds a Mailer from SMTP_* environment variables.
// It returns nil when no SMTP host is configured; the consumer then
// only writes the notification log.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}
	return &Mailer{
		host: host,
		port: port,
		user: os.Getenv("SMTP_USERNAME"),
		pass: os.Getenv("SMTP_PASSWORD"),
		from: from,
	}
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}
