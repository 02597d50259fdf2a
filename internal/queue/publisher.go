package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (ch channel, closeConn func() error, err error)

const (
	// dialTimeout bounds the TCP connect and AMQP handshake.
	dialTimeout = 3 * time.Second
	// redialCooldown is how long sends fail fast after a failed dial.
	redialCooldown = 10 * time.Second
)

func dialAMQP(url string) (channel, func() error, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open: %w", err)
	}
	return ch, conn.Close, nil
}

// Publisher is the reservation service's Notification Dispatcher.  It dials
// lazily, keeps one channel open and redials after a failed publish, so a
// broker outage only costs the notifications sent while it lasts.  After a
// failed dial it refuses to redial for a cooldown period and sends fail
// immediately with ErrBrokerUnavailable.
type Publisher struct {
	url      string
	log      *zap.Logger
	dial     dialFunc
	cooldown time.Duration
	now      func() time.Time

	mu        sync.Mutex
	ch        channel
	closeConn func() error
	retryAt   time.Time
}

// ErrBrokerUnavailable is returned while the publisher waits out the
// cooldown that follows a failed dial.
var ErrBrokerUnavailable = errors.New("broker unavailable")

// NewPublisher returns a Publisher for the broker at url.  No connection is
// made until the first send.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, log: log, dial: dialAMQP, cooldown: redialCooldown, now: time.Now}
}

// SendEmail queues an email for the notifier worker.
func (p *Publisher) SendEmail(ctx context.Context, email model.Email) error {
	return p.publishJSON(ctx, EmailQueue, email)
}

// Emit queues a realtime reservation event.
func (p *Publisher) Emit(ctx context.Context, event model.EventName, payload model.RealtimeEvent) error {
	return p.publishJSON(ctx, RealtimeQueue, RealtimeMessage{Event: event, Payload: payload})
}

func (p *Publisher) publishJSON(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", queue, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return fmt.Errorf("rabbitmq: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = ch.PublishWithContext(pubCtx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("rabbitmq: publish to %s: %w", queue, err)
	}
	return nil
}

func (p *Publisher) channelLocked() (channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerUnavailable
	}
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		p.retryAt = p.now().Add(p.cooldown)
		p.log.Warn("rabbitmq dial failed", zap.Error(err), zap.Duration("retry_in", p.cooldown))
		return nil, err
	}
	for _, q := range []string{EmailQueue, RealtimeQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = closeConn()
			return nil, fmt.Errorf("queue declare %s: %w", q, err)
		}
	}
	p.ch, p.closeConn = ch, closeConn
	p.log.Info("rabbitmq publisher connected")
	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch, p.closeConn = nil, nil
}

// Close releases the channel and connection, if any.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}
