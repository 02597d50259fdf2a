package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

const dateLayout = "02/01/2006"

// notice gathers what the notifications for one committed change need.
// Lookups run at most once; every failure is logged and recorded as a
// warning on the reservation, never returned.
type notice struct {
	s   *ReservationService
	ctx context.Context
	res *model.Reservation

	user        *model.User
	userLoaded  bool
	hotel       *model.Hotel
	hotelLoaded bool
}

func (s *ReservationService) newNotice(ctx context.Context, res *model.Reservation) *notice {
	return &notice{s: s, ctx: ctx, res: res}
}

func (n *notice) warn(msg string, err error) {
	n.s.log.Warn("notification side effect failed",
		zap.String("reservation_id", n.res.ID),
		zap.String("room_id", n.res.RoomID),
		zap.String("detail", msg),
		zap.Error(err),
	)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	n.res.Warnings = append(n.res.Warnings, msg)
}

func (n *notice) guest() *model.User {
	if !n.userLoaded {
		n.userLoaded = true
		u, err := n.s.users.GetUserByID(n.ctx, n.res.UserID)
		switch {
		case err != nil:
			n.warn("guest lookup failed", err)
		case u == nil || u.Email == "":
			n.warn(fmt.Sprintf("no email address for user %s", n.res.UserID), nil)
		default:
			n.user = u
		}
	}
	return n.user
}

func (n *notice) hotelContact() *model.Hotel {
	if !n.hotelLoaded {
		n.hotelLoaded = true
		h, err := n.s.rooms.GetHotelByID(n.ctx, n.res.HotelID)
		switch {
		case err != nil:
			n.warn("hotel lookup failed", err)
		case h == nil:
			n.warn(fmt.Sprintf("hotel %s not found", n.res.HotelID), nil)
		default:
			n.hotel = h
		}
	}
	return n.hotel
}

func (n *notice) data() mailData {
	d := mailData{
		ID:            n.res.ID,
		CheckIn:       n.res.CheckInDate.Format(dateLayout),
		CheckOut:      n.res.CheckOutDate.Format(dateLayout),
		Total:         fmt.Sprintf("%.2f", n.res.TotalPrice),
		PaymentStatus: string(n.res.PaymentStatus),
		Confirmed:     n.res.Status == model.StatusConfirmed,
		HotelName:     "nuestro hotel",
	}
	if u := n.user; u != nil {
		d.GuestName = u.FullName()
		d.GuestEmail = u.Email
	}
	if h := n.hotel; h != nil && h.Name != "" {
		d.HotelName = h.Name
	}
	if n.s.reviewURL != "" {
		d.ReviewURL = n.s.reviewURL + "?reservationId=" + url.QueryEscape(n.res.ID)
	}
	return d
}

// mailGuest sends template tmpl to the reservation's guest.
func (n *notice) mailGuest(tmpl string, d mailData) {
	if n.guest() == nil {
		return
	}
	n.send(n.user.Email, tmpl, d)
}

// mailHotel sends template tmpl to the hotel's contact address.
func (n *notice) mailHotel(tmpl string, d mailData) {
	h := n.hotelContact()
	if h == nil {
		return
	}
	if h.Email == "" {
		n.warn(fmt.Sprintf("hotel %s has no contact email", h.ID), nil)
		return
	}
	n.send(h.Email, tmpl, d)
}

func (n *notice) send(to, tmpl string, d mailData) {
	html, err := renderMail(tmpl, d)
	if err != nil {
		n.warn(tmpl+" email not rendered", err)
		return
	}
	email := model.Email{To: to, Subject: mailSubjects[tmpl], HTML: html}
	if err := n.s.notifier.SendEmail(n.ctx, email); err != nil {
		n.warn(tmpl+" email not sent", err)
	}
}

func (n *notice) emit(event model.EventName, typ model.NotificationType, message string) {
	payload := model.RealtimeEvent{
		UserID:  n.res.UserID,
		HotelID: n.res.HotelID,
		Notification: model.Notification{
			ID:        uuid.NewString(),
			Message:   message,
			Type:      typ,
			Timestamp: time.Now().UTC(),
			Read:      false,
			Data: map[string]any{
				"reservationId": n.res.ID,
				"roomId":        n.res.RoomID,
				"status":        n.res.Status,
				"paymentStatus": n.res.PaymentStatus,
			},
		},
	}
	if err := n.s.notifier.Emit(n.ctx, event, payload); err != nil {
		n.warn(string(event)+" event not sent", err)
	}
}

// roomNumber resolves the room number for the check-in email, falling back
// to the same placeholders enrichment uses.
func (n *notice) roomNumber() string {
	room, err := n.s.rooms.GetRoomByID(n.ctx, n.res.RoomID)
	if err != nil {
		n.s.log.Warn("room lookup for check-in email failed",
			zap.String("reservation_id", n.res.ID), zap.String("room_id", n.res.RoomID), zap.Error(err))
		return placeholderError
	}
	if room == nil || room.RoomNumber == "" {
		return placeholderMissing
	}
	return room.RoomNumber
}

func (s *ReservationService) afterCreate(ctx context.Context, res *model.Reservation) {
	n := s.newNotice(ctx, res)
	n.guest()
	n.mailGuest("confirmation", n.data())
	n.emit(model.EventReservationCreated, model.NotificationInfo, "Reserva creada correctamente")
}

func (s *ReservationService) afterTransition(ctx context.Context, before model.Reservation, res *model.Reservation) {
	n := s.newNotice(ctx, res)
	switch res.Status {
	case model.StatusConfirmed:
		n.guest()
		n.mailGuest("confirmation", n.data())
		n.emit(model.EventReservationUpdated, model.NotificationSuccess, "Su reserva ha sido confirmada")

	case model.StatusCancelled:
		n.guest()
		n.hotelContact()
		d := n.data()
		n.mailGuest("cancellation_guest", d)
		n.mailHotel("cancellation_hotel", d)
		n.emit(model.EventReservationCancelled, model.NotificationWarning, "Su reserva ha sido cancelada")

	case model.StatusCheckedIn:
		n.guest()
		n.hotelContact()
		d := n.data()
		if n.user != nil {
			d.RoomNumber = n.roomNumber()
		}
		n.mailGuest("checkin", d)
		if before.PaymentStatus != model.PaymentPaid && res.PaymentStatus == model.PaymentPaid {
			n.mailGuest("payment_guest", d)
			n.mailHotel("payment_hotel", d)
		}
		n.emit(model.EventReservationCheckedIn, model.NotificationSuccess, "Check-in realizado exitosamente")

	case model.StatusCheckedOut:
		n.guest()
		n.hotelContact()
		n.mailGuest("checkout", n.data())
		n.emit(model.EventReservationCheckedOut, model.NotificationInfo, "Check-out realizado exitosamente. ¡Gracias por su estancia!")
	}
}

func (s *ReservationService) afterPayment(ctx context.Context, res *model.Reservation) {
	n := s.newNotice(ctx, res)
	n.guest()
	n.hotelContact()
	d := n.data()
	n.mailGuest("payment_guest", d)
	n.mailHotel("payment_hotel", d)
	n.emit(model.EventReservationUpdated, model.NotificationSuccess, "Pago de la reserva confirmado")
}
