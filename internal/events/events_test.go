package events

import (
	"encoding/json"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = append(received, event)
		return nil
	})

	payload := BookingEventPayload{BookingID: 5, ItemID: 2, Status: models.StatusWaiting}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, received, 1)
	assert.Equal(t, EventBookingCreated, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	var got BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &got))
	assert.Equal(t, payload, got)
}

func TestEventBusTypeIsolation(t *testing.T) {
	bus := NewEventBus()

	created := 0
	approved := 0
	bus.Subscribe(EventBookingCreated, func(*Event) error { created++; return nil })
	bus.Subscribe(EventBookingApproved, func(*Event) error { approved++; return nil })

	require.NoError(t, bus.PublishJSON(EventBookingApproved, BookingEventPayload{BookingID: 1}))

	assert.Equal(t, 0, created)
	assert.Equal(t, 1, approved)
}

func TestEventBusMultipleHandlers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(*Event) error { calls++; return nil }
	bus.Subscribe(EventBookingRejected, handler)
	bus.Subscribe(EventBookingRejected, handler)

	bus.Publish(&Event{Type: EventBookingRejected})
	assert.Equal(t, 2, calls)
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1}))
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1}))
}
