package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// UpdateStatus moves a reservation to next along the lifecycle graph.
//
// The room-state change the new status requires is made while the
// reservation row is locked and before the status is written.  If that call
// fails nothing is persisted and the caller gets an Internal error.  If it
// succeeds but the write or commit fails, the room is put back to the state
// it had before and the caller again gets Internal.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, next model.Status) (*model.Reservation, error) {
	if !next.Valid() {
		return nil, badRequest("unknown status %q", next)
	}

	var (
		before      model.Reservation
		roomChanged bool
		roomBefore  model.RoomState
	)
	res, err := s.store.Transition(ctx, id, func(ctx context.Context, res *model.Reservation) error {
		before = *res
		if res.Status == next {
			return badRequest("reservation is already %s", next)
		}
		if !res.Status.CanTransitionTo(next) {
			return badRequest("cannot change reservation status from %s to %s", res.Status, next)
		}

		if target, ok := model.RoomStateFor(next); ok {
			roomBefore = s.currentRoomState(ctx, res)
			room, err := s.rooms.UpdateRoomState(ctx, res.RoomID, target)
			if err != nil {
				return internal(err, "failed to set room %s to %s", res.RoomID, target)
			}
			if room == nil {
				return notFound("room %s not found", res.RoomID)
			}
			roomChanged = true
		}

		res.PaymentStatus = model.PaymentAfter(next, res.PaymentStatus)
		res.Status = next
		return nil
	})
	if err != nil {
		if roomChanged {
			s.restoreRoom(context.WithoutCancel(ctx), before, roomBefore)
		}
		return nil, storeError(err, id)
	}

	s.log.Info("reservation status changed",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", res.RoomID),
		zap.String("from", string(before.Status)),
		zap.String("to", string(res.Status)),
		zap.String("payment_status", string(res.PaymentStatus)),
	)
	s.afterTransition(context.WithoutCancel(ctx), before, res)
	return res, nil
}

// currentRoomState reads the room's state before it is changed so a failed
// transition can restore it.  When the read fails the state implied by the
// reservation's current status is used instead.
func (s *ReservationService) currentRoomState(ctx context.Context, res *model.Reservation) model.RoomState {
	room, err := s.rooms.GetRoomByID(ctx, res.RoomID)
	if err == nil && room != nil && room.State != "" {
		return room.State
	}
	if err != nil {
		s.log.Warn("room lookup before transition failed",
			zap.String("reservation_id", res.ID), zap.String("room_id", res.RoomID), zap.Error(err))
	}
	return impliedRoomState(res.Status)
}

func impliedRoomState(s model.Status) model.RoomState {
	if s == model.StatusPending {
		return model.RoomAvailable
	}
	if st, ok := model.RoomStateFor(s); ok {
		return st
	}
	return model.RoomAvailable
}

// restoreRoom is the compensating step for a room change whose reservation
// write did not commit.
func (s *ReservationService) restoreRoom(ctx context.Context, res model.Reservation, state model.RoomState) {
	if _, err := s.rooms.UpdateRoomState(ctx, res.RoomID, state); err != nil {
		s.log.Error("room state compensation failed; room and reservation diverge",
			zap.String("reservation_id", res.ID),
			zap.String("room_id", res.RoomID),
			zap.String("room_state", string(state)),
			zap.Error(err),
		)
		return
	}
	s.log.Warn("room state restored after failed transition",
		zap.String("reservation_id", res.ID),
		zap.String("room_id", res.RoomID),
		zap.String("room_state", string(state)),
	)
}

// MarkAsPaid records payment for a reservation.  Its status is unchanged.
func (s *ReservationService) MarkAsPaid(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.store.Transition(ctx, id, func(ctx context.Context, res *model.Reservation) error {
		if res.PaymentStatus == model.PaymentPaid {
			return badRequest("reservation %s is already paid", res.ID)
		}
		res.PaymentStatus = model.PaymentPaid
		return nil
	})
	if err != nil {
		return nil, storeError(err, id)
	}
	s.log.Info("reservation marked as paid", zap.String("reservation_id", res.ID))

	s.afterPayment(context.WithoutCancel(ctx), res)
	return res, nil
}
