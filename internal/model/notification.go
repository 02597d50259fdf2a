package model

import "time"

// Email is a send request handed to the Notification Dispatcher.  Exactly
// one of HTML or Text is normally set.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

// EventName identifies a realtime reservation event.
type EventName string

const (
	EventReservationCreated    EventName = "reservation-created"
	EventReservationUpdated    EventName = "reservation-updated"
	EventReservationCancelled  EventName = "reservation-cancelled"
	EventReservationCheckedIn  EventName = "reservation-checked-in"
	EventReservationCheckedOut EventName = "reservation-checked-out"
)

// NotificationType is the severity shown by realtime clients.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is the body of a realtime event.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	Data      any              `json:"data,omitempty"`
}

// RealtimeEvent is the payload fanned out to a user's and a hotel's
// realtime channels.
type RealtimeEvent struct {
	UserID       string       `json:"userId"`
	HotelID      string       `json:"hotelId"`
	Notification Notification `json:"notification"`
}
