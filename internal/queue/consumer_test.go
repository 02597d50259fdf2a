package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type fakeMailer struct {
	sent []model.Email
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, email model.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func TestConsumerHandle_EmailDelivered(t *testing.T) {
	mailer := &fakeMailer{}
	c := NewConsumer("amqp://test/", mailer, nil)

	err := c.Handle(context.Background(), EmailQueue, []byte(`{"to":"ana@example.com","subject":"Pago Confirmado","html":"<p>ok</p>"}`))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Pago Confirmado", mailer.sent[0].Subject)
}

func TestConsumerHandle_EmailErrors(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp: 421")}
	c := NewConsumer("amqp://test/", mailer, nil)

	require.Error(t, c.Handle(context.Background(), EmailQueue, []byte(`not json`)))
	require.ErrorContains(t, c.Handle(context.Background(), EmailQueue, []byte(`{"subject":"x"}`)), "recipient")
	require.ErrorContains(t, c.Handle(context.Background(), EmailQueue, []byte(`{"to":"a@b.c"}`)), "smtp: 421")
}

func TestConsumerHandle_RealtimeLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewConsumer("amqp://test/", &fakeMailer{}, zap.New(core))

	body := []byte(`{"event":"reservation-cancelled","payload":{"userId":"user-1","hotelId":"hotel-1","notification":{"id":"n-1","message":"Reserva cancelada","type":"warning","read":false}}}`)
	require.NoError(t, c.Handle(context.Background(), RealtimeQueue, body))

	entries := logs.FilterMessage("realtime event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "reservation-cancelled", fields["event"])
	assert.Equal(t, "hotel-1", fields["hotel_id"])
	assert.Equal(t, "warning", fields["type"])
}

func TestConsumerHandle_UnknownQueue(t *testing.T) {
	c := NewConsumer("amqp://test/", &fakeMailer{}, nil)
	require.Error(t, c.Handle(context.Background(), "booking.confirmed", []byte(`{}`)))
}
