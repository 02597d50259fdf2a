// Package queue carries reservation notifications over RabbitMQ: the
// publisher used by the reservation service and the consumer run by the
// notifier worker.
package queue

import "github.com/iliyamo/hotel-reservation/internal/model"

// Queues are durable and addressed through the default exchange.
const (
	EmailQueue    = "notifications.email"
	RealtimeQueue = "notifications.realtime"
)

// RealtimeMessage is the body published on RealtimeQueue.
type RealtimeMessage struct {
	Event   model.EventName     `json:"event"`
	Payload model.RealtimeEvent `json:"payload"`
}
