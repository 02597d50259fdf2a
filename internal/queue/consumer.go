package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, email model.Email) error
}

// Consumer drains both notification queues: emails go to the Mailer,
// realtime events are written as structured log entries.
type Consumer struct {
	url    string
	mailer Mailer
	log    *zap.Logger
}

// NewConsumer returns a Consumer that delivers emails through mailer.
func NewConsumer(url string, mailer Mailer, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{url: url, mailer: mailer, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s) whenever the
// connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("notification consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("notification consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("notification consumer: set QoS failed", zap.Error(err))
	}

	deliveries := make(map[string]<-chan amqp.Delivery, 2)
	for _, q := range []string{EmailQueue, RealtimeQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries[q] = msgs
	}
	c.log.Info("notification consumer started")

	emails, events := deliveries[EmailQueue], deliveries[RealtimeQueue]
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-emails:
			if !ok {
				return errors.New("email deliveries channel closed")
			}
			c.settle(ctx, EmailQueue, d)
		case d, ok := <-events:
			if !ok {
				return errors.New("realtime deliveries channel closed")
			}
			c.settle(ctx, RealtimeQueue, d)
		}
	}
}

func (c *Consumer) settle(ctx context.Context, queue string, d amqp.Delivery) {
	if err := c.Handle(ctx, queue, d.Body); err != nil {
		c.log.Error("notification consumer: handle message failed", zap.String("queue", queue), zap.Error(err))
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

// Handle processes one message body taken from queue.
func (c *Consumer) Handle(ctx context.Context, queue string, body []byte) error {
	switch queue {
	case EmailQueue:
		var email model.Email
		if err := json.Unmarshal(body, &email); err != nil {
			return fmt.Errorf("unmarshal email: %w", err)
		}
		if email.To == "" {
			return errors.New("email without recipient")
		}
		if err := c.mailer.Send(ctx, email); err != nil {
			return fmt.Errorf("send email to %s: %w", email.To, err)
		}
		c.log.Info("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
		return nil

	case RealtimeQueue:
		var msg RealtimeMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("unmarshal realtime event: %w", err)
		}
		c.log.Info("realtime event",
			zap.String("event", string(msg.Event)),
			zap.String("user_id", msg.Payload.UserID),
			zap.String("hotel_id", msg.Payload.HotelID),
			zap.String("notification_id", msg.Payload.Notification.ID),
			zap.String("type", string(msg.Payload.Notification.Type)),
			zap.String("message", msg.Payload.Notification.Message),
		)
		return nil
	}
	return fmt.Errorf("unknown queue %q", queue)
}
