package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func TestUpdateStatus_SideEffects(t *testing.T) {
	tests := []struct {
		name        string
		from        model.Status
		payment     model.PaymentStatus
		to          model.Status
		wantRoom    model.RoomState
		wantPayment model.PaymentStatus
		wantEvent   model.EventName
		wantMail    []string
	}{
		{
			name: "confirm", from: model.StatusPending, payment: model.PaymentPending, to: model.StatusConfirmed,
			wantRoom: model.RoomReserved, wantPayment: model.PaymentPending,
			wantEvent: model.EventReservationUpdated, wantMail: []string{"Confirmación de Reserva"},
		},
		{
			name: "cancel paid", from: model.StatusConfirmed, payment: model.PaymentPaid, to: model.StatusCancelled,
			wantRoom: model.RoomAvailable, wantPayment: model.PaymentRefunded,
			wantEvent: model.EventReservationCancelled,
			wantMail:  []string{"Cancelación de Reserva", "Notificación de Cancelación de Reserva"},
		},
		{
			name: "cancel pending", from: model.StatusPending, payment: model.PaymentPending, to: model.StatusCancelled,
			wantRoom: model.RoomAvailable, wantPayment: model.PaymentCancelled,
			wantEvent: model.EventReservationCancelled,
			wantMail:  []string{"Cancelación de Reserva", "Notificación de Cancelación de Reserva"},
		},
		{
			name: "check in collects payment", from: model.StatusConfirmed, payment: model.PaymentPending, to: model.StatusCheckedIn,
			wantRoom: model.RoomOccupied, wantPayment: model.PaymentPaid,
			wantEvent: model.EventReservationCheckedIn,
			wantMail:  []string{"Check-in Confirmado", "Pago Confirmado", "Pago de Reserva Confirmado"},
		},
		{
			name: "check in already paid", from: model.StatusConfirmed, payment: model.PaymentPaid, to: model.StatusCheckedIn,
			wantRoom: model.RoomOccupied, wantPayment: model.PaymentPaid,
			wantEvent: model.EventReservationCheckedIn, wantMail: []string{"Check-in Confirmado"},
		},
		{
			name: "check out", from: model.StatusCheckedIn, payment: model.PaymentPaid, to: model.StatusCheckedOut,
			wantRoom: model.RoomAvailable, wantPayment: model.PaymentPaid,
			wantEvent: model.EventReservationCheckedOut,
			wantMail:  []string{"Gracias por su estancia - ¿Podría dejarnos su opinión?"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed("r1", tt.from, tt.payment)

			res, err := f.svc.UpdateStatus(context.Background(), "r1", tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, res.Status)
			assert.Equal(t, tt.wantPayment, res.PaymentStatus)
			assert.Empty(t, res.Warnings)

			stored := f.store.get("r1")
			assert.Equal(t, tt.to, stored.Status)
			assert.Equal(t, tt.wantPayment, stored.PaymentStatus)
			assert.Equal(t, tt.wantRoom, f.rooms.state("room-1"))

			assert.Equal(t, tt.wantMail, f.notifier.subjects())
			assert.Equal(t, []model.EventName{tt.wantEvent}, f.notifier.events)
		})
	}
}

func TestUpdateStatus_CancellationNotifiesHotel(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusConfirmed, model.PaymentPaid)

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, f.notifier.emails, 2)
	hotelMail := f.notifier.emails[1]
	assert.Equal(t, "recepcion@marazul.test", hotelMail.To)
	assert.Contains(t, hotelMail.HTML, "ana@example.com")
	assert.Contains(t, hotelMail.HTML, "refunded")
}

func TestUpdateStatus_CheckInEmailHasRoomNumber(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusConfirmed, model.PaymentPaid)

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusCheckedIn)
	require.NoError(t, err)
	require.NotEmpty(t, f.notifier.emails)
	assert.Contains(t, f.notifier.emails[0].HTML, "101")
	assert.Contains(t, f.notifier.emails[0].HTML, "Hotel Mar Azul")
}

func TestUpdateStatus_CheckOutEmailLinksReview(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusCheckedIn, model.PaymentPaid)

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusCheckedOut)
	require.NoError(t, err)
	require.Len(t, f.notifier.emails, 1)
	assert.Contains(t, f.notifier.emails[0].HTML, "https://mihotel.com/reviews/new?reservationId=r1")
}

func TestUpdateStatus_SameStatusRejected(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusConfirmed, model.PaymentPending)

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusConfirmed)
	requireKind(t, err, KindBadRequest)
	assert.Empty(t, f.rooms.updates)
	assert.Empty(t, f.notifier.events)
}

func TestUpdateStatus_InvalidTargets(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusCheckedOut, model.PaymentPaid)

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.Status("archived"))
	requireKind(t, err, KindBadRequest)

	_, err = f.svc.UpdateStatus(context.Background(), "r1", model.StatusCancelled)
	requireKind(t, err, KindBadRequest)

	_, err = f.svc.UpdateStatus(context.Background(), "r1", model.StatusPending)
	requireKind(t, err, KindBadRequest)

	assert.Equal(t, model.StatusCheckedOut, f.store.get("r1").Status)
	assert.Empty(t, f.rooms.updates)
}

func TestUpdateStatus_UnknownReservation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), "nope", model.StatusConfirmed)
	requireKind(t, err, KindNotFound)
}

func TestUpdateStatus_RoomServiceDownFailsWithoutCommitting(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusPending, model.PaymentPending)
	f.rooms.updateErr = errDown

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusConfirmed)
	requireKind(t, err, KindInternal)

	assert.Equal(t, model.StatusPending, f.store.get("r1").Status)
	assert.Equal(t, model.RoomAvailable, f.rooms.state("room-1"))
	assert.Empty(t, f.notifier.emails)
	assert.Empty(t, f.notifier.events)
}

func TestUpdateStatus_MissingRoomIsNotFound(t *testing.T) {
	f := newFixture(t)
	res := f.seed("r1", model.StatusPending, model.PaymentPending)
	res.RoomID = "room-gone"
	f.store.put(res)

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusConfirmed)
	requireKind(t, err, KindNotFound)
	assert.Equal(t, model.StatusPending, f.store.get("r1").Status)
}

func TestUpdateStatus_CommitFailureRestoresRoom(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusPending, model.PaymentPending)
	f.rooms.rooms["room-1"].State = model.RoomTempReserved
	f.store.commitErr = errors.New("commit: driver: bad connection")

	_, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusConfirmed)
	requireKind(t, err, KindInternal)

	assert.Equal(t, []model.RoomState{model.RoomReserved, model.RoomTempReserved}, f.rooms.updates)
	assert.Equal(t, model.RoomTempReserved, f.rooms.state("room-1"))
	assert.Equal(t, model.StatusPending, f.store.get("r1").Status)
	assert.Empty(t, f.notifier.events)
}

func TestUpdateStatus_NotificationFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusPending, model.PaymentPending)
	f.notifier.err = errDown

	res, err := f.svc.UpdateStatus(context.Background(), "r1", model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, model.RoomReserved, f.rooms.state("room-1"))
}

func TestImpliedRoomState(t *testing.T) {
	assert.Equal(t, model.RoomAvailable, impliedRoomState(model.StatusPending))
	assert.Equal(t, model.RoomReserved, impliedRoomState(model.StatusConfirmed))
	assert.Equal(t, model.RoomOccupied, impliedRoomState(model.StatusCheckedIn))
}

func TestMarkAsPaid(t *testing.T) {
	f := newFixture(t)
	f.seed("r1", model.StatusConfirmed, model.PaymentPending)

	res, err := f.svc.MarkAsPaid(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, res.PaymentStatus)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.Equal(t, []string{"Pago Confirmado", "Pago de Reserva Confirmado"}, f.notifier.subjects())
	assert.Equal(t, "recepcion@marazul.test", f.notifier.emails[1].To)
	assert.Empty(t, f.rooms.updates)
}

func TestMarkAsPaid_AlreadyPaid(t *testing.T) {
	f := newFixture(t)
	before := f.seed("r1", model.StatusConfirmed, model.PaymentPaid)

	_, err := f.svc.MarkAsPaid(context.Background(), "r1")
	requireKind(t, err, KindBadRequest)
	after := f.store.get("r1")
	assert.Equal(t, before.PaymentStatus, after.PaymentStatus)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	assert.Empty(t, f.notifier.emails)
}

func TestMarkAsPaid_HotelWithoutEmailWarns(t *testing.T) {
	f := newFixture(t)
	f.rooms.hotels["hotel-1"].Email = ""
	f.seed("r1", model.StatusPending, model.PaymentPending)

	res, err := f.svc.MarkAsPaid(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no contact email")
	assert.Equal(t, []string{"Pago Confirmado"}, f.notifier.subjects())
}
