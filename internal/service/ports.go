package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// ReservationStore persists reservations.  Create must reject overlapping
// bookings atomically with repository.ErrConflict; Transition must hold the
// reservation locked while fn runs.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByHotel(ctx context.Context, hotelID string) ([]model.Reservation, error)
	FindOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]model.Reservation, error)
	Transition(ctx context.Context, id string, fn repository.TransitionFunc) (*model.Reservation, error)
}

// RoomInventory is the remote owner of rooms and hotels.  Lookups return
// nil, nil when the record does not exist.
type RoomInventory interface {
	GetRoomByID(ctx context.Context, id string) (*model.Room, error)
	GetRoomByNumberAndHotel(ctx context.Context, hotelID, number string) (*model.Room, error)
	UpdateRoomState(ctx context.Context, id string, state model.RoomState) (*model.Room, error)
	GetHotelByID(ctx context.Context, id string) (*model.Hotel, error)
}

// UserDirectory resolves guests.  A missing user is nil, nil.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// NotificationDispatcher accepts fire-and-forget notifications.  Errors
// only mean the request was not handed over; they never affect reservations.
type NotificationDispatcher interface {
	SendEmail(ctx context.Context, email model.Email) error
	Emit(ctx context.Context, event model.EventName, payload model.RealtimeEvent) error
}
