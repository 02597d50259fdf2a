// Package service implements the reservation lifecycle: conflict-checked
// creation, the status state machine with its room-state side effects,
// payment marking, enrichment reads and post-commit notifications.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// ReservationService coordinates the reservation store with the room
// inventory, user directory and notification dispatcher.  It keeps no state
// between calls.
type ReservationService struct {
	store     ReservationStore
	rooms     RoomInventory
	users     UserDirectory
	notifier  NotificationDispatcher
	log       *zap.Logger
	validate  *validator.Validate
	reviewURL string
}

// NewReservationService wires the orchestrator to its store and
// collaborators.  reviewURL is linked from check-out emails; a nil log
// discards output.
func NewReservationService(
	store ReservationStore,
	rooms RoomInventory,
	users UserDirectory,
	notifier NotificationDispatcher,
	log *zap.Logger,
	reviewURL string,
) *ReservationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{
		store:     store,
		rooms:     rooms,
		users:     users,
		notifier:  notifier,
		log:       log,
		validate:  newValidator(),
		reviewURL: reviewURL,
	}
}

// CreateInput is the request for Create.  Either RoomID or RoomNumber
// identifies the room; a room number is resolved within HotelID.
type CreateInput struct {
	UserID          string              `json:"userId" validate:"required"`
	HotelID         string              `json:"hotelId" validate:"required"`
	RoomID          string              `json:"roomId" validate:"required_without=RoomNumber"`
	RoomNumber      string              `json:"roomNumber" validate:"required_without=RoomID"`
	CheckInDate     *time.Time          `json:"checkInDate" validate:"required"`
	CheckOutDate    *time.Time          `json:"checkOutDate" validate:"required"`
	TotalPrice      float64             `json:"totalPrice" validate:"gte=0"`
	Status          model.Status        `json:"status" validate:"omitempty,oneof=pending confirmed"`
	PaymentStatus   model.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid"`
	SpecialRequests *string             `json:"specialRequests"`
}

// Create books a room.  Overlapping non-cancelled reservations yield a
// Conflict error that lists them.  Notifications are sent after the insert
// commits; their failures are reported in the returned reservation's
// Warnings.
func (s *ReservationService) Create(ctx context.Context, in CreateInput) (*model.Reservation, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	// Stored as DATETIME, which keeps whole seconds.
	checkIn := in.CheckInDate.UTC().Truncate(time.Second)
	checkOut := in.CheckOutDate.UTC().Truncate(time.Second)
	if !checkIn.Before(checkOut) {
		return nil, badRequest("checkInDate must be before checkOutDate")
	}

	roomID := in.RoomID
	if roomID == "" {
		room, err := s.rooms.GetRoomByNumberAndHotel(ctx, in.HotelID, in.RoomNumber)
		if err != nil {
			return nil, internal(err, "failed to resolve room %s", in.RoomNumber)
		}
		if room == nil {
			return nil, notFound("room %s not found in hotel %s", in.RoomNumber, in.HotelID)
		}
		roomID = room.ID
	}

	conflicts, err := s.store.FindOverlapping(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return nil, internal(err, "failed to check room availability")
	}
	if len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}

	res := &model.Reservation{
		UserID:          in.UserID,
		HotelID:         in.HotelID,
		RoomID:          roomID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		TotalPrice:      in.TotalPrice,
		Status:          in.Status,
		PaymentStatus:   in.PaymentStatus,
		SpecialRequests: in.SpecialRequests,
	}
	if res.Status == "" {
		res.Status = model.StatusPending
	}
	if res.PaymentStatus == "" {
		res.PaymentStatus = model.PaymentPending
	}

	if err := s.store.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race with a concurrent create for the same room.
			winners, ferr := s.store.FindOverlapping(ctx, roomID, checkIn, checkOut)
			if ferr != nil {
				s.log.Warn("conflicting reservations lookup failed",
					zap.String("room_id", roomID), zap.Error(ferr))
			}
			return nil, conflictError(winners)
		}
		return nil, internal(err, "failed to save reservation")
	}
	if err := s.applyInitialRoomState(ctx, res); err != nil {
		return nil, err
	}
	s.log.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", res.RoomID),
		zap.String("status", string(res.Status)),
	)

	s.afterCreate(context.WithoutCancel(ctx), res)
	return res, nil
}

// applyInitialRoomState sets the room to the state an initial status such as
// confirmed requires.  If the room cannot be updated the new reservation is
// cancelled, so it never holds the room while the room shows available.
func (s *ReservationService) applyInitialRoomState(ctx context.Context, res *model.Reservation) error {
	target, ok := model.RoomStateFor(res.Status)
	if !ok {
		return nil
	}
	room, err := s.rooms.UpdateRoomState(ctx, res.RoomID, target)
	if err == nil && room != nil {
		return nil
	}

	_, cerr := s.store.Transition(context.WithoutCancel(ctx), res.ID, func(_ context.Context, r *model.Reservation) error {
		r.PaymentStatus = model.PaymentAfter(model.StatusCancelled, r.PaymentStatus)
		r.Status = model.StatusCancelled
		return nil
	})
	if cerr != nil {
		s.log.Error("cancelling reservation after failed room update failed",
			zap.String("reservation_id", res.ID), zap.String("room_id", res.RoomID), zap.Error(cerr))
	} else {
		s.log.Warn("reservation cancelled after failed room update",
			zap.String("reservation_id", res.ID), zap.String("room_id", res.RoomID))
	}

	if err != nil {
		return internal(err, "failed to set room %s to %s", res.RoomID, target)
	}
	return notFound("room %s not found", res.RoomID)
}

func conflictError(conflicts []model.Reservation) *Error {
	return &Error{
		Kind:      KindConflict,
		Message:   "room is already booked for the requested dates",
		Conflicts: conflicts,
	}
}

// FindAll lists every reservation, newest first.
func (s *ReservationService) FindAll(ctx context.Context) ([]model.Reservation, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, internal(err, "failed to list reservations")
	}
	return list, nil
}

func (s *ReservationService) FindOne(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, id)
	}
	return res, nil
}

// CheckReservationConflicts returns the non-cancelled reservations of roomID
// that overlap [checkIn, checkOut).  An empty result means the room is free.
func (s *ReservationService) CheckReservationConflicts(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]model.Reservation, error) {
	if roomID == "" {
		return nil, badRequest("roomId is required")
	}
	if checkIn.IsZero() || checkOut.IsZero() {
		return nil, badRequest("checkIn and checkOut are required")
	}
	if !checkIn.Before(checkOut) {
		return nil, badRequest("checkIn must be before checkOut")
	}
	list, err := s.store.FindOverlapping(ctx, roomID, checkIn.UTC(), checkOut.UTC())
	if err != nil {
		return nil, internal(err, "failed to check room availability")
	}
	return list, nil
}

// storeError converts repository errors for reservation id.
func storeError(err error, id string) error {
	var se *Error
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, repository.ErrNotFound):
		return notFound("reservation %s not found", id)
	}
	return internal(err, "reservation store failure")
}
