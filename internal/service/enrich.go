package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Placeholder values shown when a collaborator lookup comes back empty or
// fails.  Enrichment never turns those into errors.
const (
	placeholderUser      = "Usuario no encontrado"
	placeholderMissing   = "No disponible"
	placeholderError     = "Error"
	placeholderErrorType = "Error al cargar datos"
)

// enricher memoizes user and room snapshots for one read so a hotel listing
// looks up each guest and room once.
type enricher struct {
	s     *ReservationService
	users map[string]model.UserSnapshot
	rooms map[string]model.RoomSnapshot
}

func (s *ReservationService) newEnricher() *enricher {
	return &enricher{
		s:     s,
		users: make(map[string]model.UserSnapshot),
		rooms: make(map[string]model.RoomSnapshot),
	}
}

func (e *enricher) enrich(ctx context.Context, res model.Reservation) model.EnrichedReservation {
	return model.EnrichedReservation{
		Reservation: res,
		User:        e.user(ctx, res.UserID),
		Room:        e.room(ctx, res.RoomID),
	}
}

func (e *enricher) user(ctx context.Context, id string) model.UserSnapshot {
	if snap, ok := e.users[id]; ok {
		return snap
	}
	snap := model.UserSnapshot{ID: id, Name: placeholderUser}
	u, err := e.s.users.GetUserByID(ctx, id)
	switch {
	case err != nil:
		e.s.log.Warn("enrichment: user lookup failed", zap.String("user_id", id), zap.Error(err))
	case u != nil:
		snap.Name = u.FullName()
		snap.Email = u.Email
	}
	e.users[id] = snap
	return snap
}

func (e *enricher) room(ctx context.Context, id string) model.RoomSnapshot {
	if snap, ok := e.rooms[id]; ok {
		return snap
	}
	snap := model.RoomSnapshot{ID: id, State: model.RoomUnknown}
	r, err := e.s.rooms.GetRoomByID(ctx, id)
	switch {
	case err != nil:
		e.s.log.Warn("enrichment: room lookup failed", zap.String("room_id", id), zap.Error(err))
		snap.Number = placeholderError
		snap.Type = placeholderErrorType
	case r == nil:
		snap.Number = placeholderMissing
		snap.Type = placeholderMissing
	default:
		snap.Number = orDefault(r.RoomNumber, placeholderMissing)
		snap.Type = orDefault(r.RoomType, placeholderMissing)
		snap.Price = r.Price
		if r.State != "" {
			snap.State = r.State
		}
	}
	e.rooms[id] = snap
	return snap
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FindOneEnriched returns a reservation with user and room snapshots.
func (s *ReservationService) FindOneEnriched(ctx context.Context, id string) (*model.EnrichedReservation, error) {
	res, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.newEnricher().enrich(ctx, *res)
	return &out, nil
}

// FindByHotelID lists a hotel's reservations, each enriched.
func (s *ReservationService) FindByHotelID(ctx context.Context, hotelID string) ([]model.EnrichedReservation, error) {
	if hotelID == "" {
		return nil, badRequest("hotelId is required")
	}
	list, err := s.store.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, internal(err, "failed to list reservations for hotel %s", hotelID)
	}
	e := s.newEnricher()
	out := make([]model.EnrichedReservation, 0, len(list))
	for _, res := range list {
		out = append(out, e.enrich(ctx, res))
	}
	return out, nil
}
