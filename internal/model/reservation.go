package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus tracks money owed or collected for a reservation.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Reservation records a guest's booking of one room for a half-open
// [CheckInDate, CheckOutDate) interval.  Cancellation is a status value;
// rows are never deleted.
//
// Fields:
//  ID              – opaque UUID.
//  UserID          – guest who owns the reservation.
//  HotelID         – hotel the room belongs to.
//  RoomID          – booked room.
//  CheckInDate     – inclusive start.
//  CheckOutDate    – exclusive end.
//  TotalPrice      – non-negative amount charged for the stay.
//  Status          – lifecycle state.
//  PaymentStatus   – payment state.
//  SpecialRequests – optional free text.
//  Warnings        – side effects that failed after commit (not persisted).
type Reservation struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	HotelID         string        `json:"hotelId"`
	RoomID          string        `json:"roomId"`
	CheckInDate     time.Time     `json:"checkInDate"`
	CheckOutDate    time.Time     `json:"checkOutDate"`
	TotalPrice      float64       `json:"totalPrice"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	SpecialRequests *string       `json:"specialRequests,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// Overlaps reports whether the reservation's stay intersects [checkIn, checkOut).
// Cancelled reservations never overlap anything.
func (r Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	if r.Status == StatusCancelled {
		return false
	}
	return r.CheckInDate.Before(checkOut) && r.CheckOutDate.After(checkIn)
}

// transitions lists the statuses reachable from each status.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCheckedOut},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// RoomStateFor returns the room state a reservation entering status s
// requires.  The second value is false for statuses with no room effect.
func RoomStateFor(s Status) (RoomState, bool) {
	switch s {
	case StatusConfirmed:
		return RoomReserved, true
	case StatusCheckedIn:
		return RoomOccupied, true
	case StatusCancelled, StatusCheckedOut:
		return RoomAvailable, true
	}
	return "", false
}

// PaymentAfter returns the payment status that results from moving a
// reservation with payment status p into status s.
func PaymentAfter(s Status, p PaymentStatus) PaymentStatus {
	switch s {
	case StatusCancelled:
		switch p {
		case PaymentPaid:
			return PaymentRefunded
		case PaymentPending:
			return PaymentCancelled
		}
	case StatusCheckedIn:
		if p == PaymentPending {
			return PaymentPaid
		}
	}
	return p
}
