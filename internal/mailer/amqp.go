package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nestaway/internal/observability"

	"github.com/streadway/amqp"
)

const defaultMailQueue = "mail.verification"

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSender hands verification mail to a worker through a durable queue.
type AMQPSender struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       publisher
	queue    string
	frontURL string
}

// NewAMQPSender dials the broker and declares the mail queue.
func NewAMQPSender(url, queue, frontURL string) (*AMQPSender, error) {
	if queue == "" {
		queue = defaultMailQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &AMQPSender{conn: conn, ch: ch, queue: queue, frontURL: frontURL}, nil
}

func (s *AMQPSender) SendVerificationCode(ctx context.Context, email, code string) error {
	span, _ := observability.StartClientSpan(ctx, "amqp", "publish")
	defer span.End()

	body, err := json.Marshal(VerificationMessage(email, code, s.frontURL))
	if err != nil {
		return err
	}

	// amqp.Channel is not safe for concurrent publishes.
	s.mu.Lock()
	err = s.ch.Publish("", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	s.mu.Unlock()

	record("amqp", err)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("publish verification mail: %w", err)
	}
	return nil
}

// Close shuts the broker connection.
func (s *AMQPSender) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
