package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tablebook/cafe-reservation/internal/repository"
)

// Consumer drains the notification.requested queue.  Every request is
// appended to logs/notifications.log; when a mailer is configured the
// rendered message is additionally delivered over SMTP, to the named
// user, or to every active user for broadcasts.
type Consumer struct {
	Users  *repository.UserRepo
	Mailer *Mailer // nil disables email delivery
}

// Start connects to RabbitMQ, declares the durable queue and consumes
// messages in a reconnect loop.  It runs until the process exits and
// never returns on broker failures; processing errors reject the
// offending message without requeueing so the loop cannot spin.
func (c *Consumer) Start() error {
	url := brokerURL()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("outbox-consumer: dial broker failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(conn); err != nil {
			log.Printf("outbox-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("outbox-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			log.Printf("outbox-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	subject, text := render(n)
	if err := appendLog(n, subject); err != nil {
		return err
	}
	if c.Mailer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	switch n.RecipientKind {
	case RecipientUser:
		u, err := c.Users.GetByID(ctx, n.RecipientID)
		if err != nil {
			return fmt.Errorf("load recipient %d: %w", n.RecipientID, err)
		}
		if u.Email == nil || *u.Email == "" {
			return nil // no email channel for this user
		}
		if err := c.Mailer.Send(*u.Email, subject, text); err != nil {
			log.Printf("outbox-consumer: send to %s failed: %v", *u.Email, err)
		}
	case RecipientBroadcast:
		users, err := c.Users.List(ctx, true)
		if err != nil {
			return fmt.Errorf("load broadcast recipients: %w", err)
		}
		for _, u := range users {
			if u.Email == nil || *u.Email == "" {
				continue
			}
			if err := c.Mailer.Send(*u.Email, subject, text); err != nil {
				log.Printf("outbox-consumer: send to %s failed: %v", *u.Email, err)
			}
		}
	}
	return nil
}

// render produces the subject and body for a notification template.
func render(n Notification) (subject, body string) {
	p := n.Params
	switch n.Template {
	case TemplateBookingCreated:
		subject = "Your table is booked"
		body = fmt.Sprintf("Your booking at %s on %s is confirmed.\nTables: %s, slots: %s.",
			p["cafe"], p["date"], p["tables"], p["slots"])
	case TemplateBookingCancelled:
		subject = "Your booking was cancelled"
		body = fmt.Sprintf("Your booking at %s on %s has been cancelled.", p["cafe"], p["date"])
	case TemplatePromotionCreated:
		subject = "New promotion!"
		body = p["description"]
	default:
		subject = n.Template
		body = fmt.Sprintf("%v", p)
	}
	return subject, body
}

func appendLog(n Notification, subject string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "notifications.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	line := fmt.Sprintf("[%s] %s | recipient=%s/%d | subject=%q\n",
		n.RequestedAt, n.Template, n.RecipientKind, n.RecipientID, subject)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
