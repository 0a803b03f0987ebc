package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ubertool-booking/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	b := &domain.Booking{
		ID:                  uuid.New(),
		ToolID:              7,
		RenterID:            3,
		OwnerID:             4,
		Status:              domain.BookingStatusPending,
		PaymentClientSecret: "pi_secret",
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := domain.NewBookingEvent(domain.EventBookingCreated, b, b.OwnerID, now)

	t.Run("Encodes the event keyed by booking", func(t *testing.T) {
		w := &fakeWriter{}
		p := NewKafkaPublisher(w, "booking-events")

		require.NoError(t, p.Publish(context.Background(), event))
		require.Len(t, w.msgs, 1)
		msg := w.msgs[0]
		assert.Equal(t, b.ID.String(), string(msg.Key))
		assert.Equal(t, "event_type", msg.Headers[0].Key)
		assert.Equal(t, "booking_created", string(msg.Headers[0].Value))

		var decoded domain.BookingEvent
		require.NoError(t, json.Unmarshal(msg.Value, &decoded))
		assert.Equal(t, int32(4), decoded.RecipientID)
		assert.Equal(t, b.ID, decoded.Booking.ID)
		assert.Empty(t, decoded.Booking.PaymentClientSecret)
		assert.NotContains(t, string(msg.Value), "pi_secret")
	})

	t.Run("Broker failure", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("leader not available")}
		p := NewKafkaPublisher(w, "booking-events")

		err := p.Publish(context.Background(), event)
		assert.ErrorContains(t, err, "leader not available")
		require.NoError(t, p.Close())
		assert.True(t, w.closed)
	})
}
