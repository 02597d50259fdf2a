package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationRepo is the Reservation Store.  It owns the reservations table
// and is the only writer of reservation rows.  All timestamps are stored in
// UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, hotel_id, room_id, check_in_date, check_out_date,
       total_price, status, payment_status, special_requests, created_at, updated_at`

const overlapQuery = `SELECT ` + reservationColumns + `
FROM reservations
WHERE room_id = ? AND status <> 'cancelled' AND check_in_date < ? AND check_out_date > ?`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res      model.Reservation
		requests sql.NullString
	)
	err := s.Scan(
		&res.ID, &res.UserID, &res.HotelID, &res.RoomID, &res.CheckInDate, &res.CheckOutDate,
		&res.TotalPrice, &res.Status, &res.PaymentStatus, &requests, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	if requests.Valid {
		sr := requests.String
		res.SpecialRequests = &sr
	}
	return res, nil
}

func scanReservations(rows *sql.Rows) ([]model.Reservation, error) {
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// FindOverlapping returns every non-cancelled reservation of roomID whose
// [check_in_date, check_out_date) intersects [checkIn, checkOut).  An empty
// slice means the room is free for that range.  The caller must ensure
// checkIn is before checkOut.
func (r *ReservationRepo) FindOverlapping(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]model.Reservation, error) {
	return findOverlapping(ctx, r.db, roomID, checkIn, checkOut)
}

func findOverlapping(ctx context.Context, q queryer, roomID string, checkIn, checkOut time.Time) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, overlapQuery, roomID, checkOut.UTC(), checkIn.UTC())
	if err != nil {
		return nil, fmt.Errorf("select overlapping: %w", err)
	}
	return scanReservations(rows)
}

// Create inserts a reservation if, and only if, its room is free for the
// requested range.  The overlap check and the insert run in one transaction
// that first row-locks the room's room_locks entry, so two concurrent
// creates for the same room cannot both pass the check.  ErrConflict is
// returned when an overlapping reservation exists.  ID, CreatedAt and
// UpdatedAt are populated on res.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_locks (room_id) VALUES (?) ON DUPLICATE KEY UPDATE locked_at = UTC_TIMESTAMP()`,
		res.RoomID,
	); err != nil {
		return fmt.Errorf("lock room: %w", err)
	}

	existing, err := findOverlapping(ctx, tx, res.RoomID, res.CheckInDate, res.CheckOutDate)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrConflict
	}

	var requests sql.NullString
	if res.SpecialRequests != nil {
		requests = sql.NullString{String: *res.SpecialRequests, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (id, user_id, hotel_id, room_id, check_in_date, check_out_date,
       total_price, status, payment_status, special_requests, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.UserID, res.HotelID, res.RoomID, res.CheckInDate.UTC(), res.CheckOutDate.UTC(),
		res.TotalPrice, string(res.Status), string(res.PaymentStatus), requests, now, now,
	); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// GetByID returns a single reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select reservation: %w", err)
	}
	return &res, nil
}

// List returns all reservations, newest first.
func (r *ReservationRepo) List(ctx context.Context) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	return scanReservations(rows)
}

// ListByHotel returns the reservations of one hotel ordered by check-in date.
func (r *ReservationRepo) ListByHotel(ctx context.Context, hotelID string) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE hotel_id = ? ORDER BY check_in_date`,
		hotelID,
	)
	if err != nil {
		return nil, fmt.Errorf("select reservations by hotel: %w", err)
	}
	return scanReservations(rows)
}

// TransitionFunc inspects and mutates a locked reservation.  Returning an
// error aborts the transition and rolls back; the error is passed through
// to the caller of Transition unchanged.
type TransitionFunc func(ctx context.Context, res *model.Reservation) error

// Transition loads the reservation with a row lock, lets fn validate and
// mutate its status and payment status, persists both and commits.
// Concurrent transitions of the same reservation are serialized on the row
// lock.  ErrNotFound is returned for unknown ids.
func (r *ReservationRepo) Transition(ctx context.Context, id string, fn TransitionFunc) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select reservation for update: %w", err)
	}

	if err := fn(ctx, &res); err != nil {
		return nil, err
	}

	res.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, payment_status = ?, updated_at = ? WHERE id = ?`,
		string(res.Status), string(res.PaymentStatus), res.UpdatedAt, res.ID,
	); err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return &res, nil
}
