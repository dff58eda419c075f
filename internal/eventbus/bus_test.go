package eventbus_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"mpi-core/internal/domain/event"
	"mpi-core/internal/eventbus"
)

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := eventbus.New(nil)
	var order []int

	bus.Subscribe(event.SubscriberFunc(func(e event.Event) error {
		order = append(order, 1)
		return nil
	}))
	bus.Subscribe(event.SubscriberFunc(func(e event.Event) error {
		order = append(order, 2)
		return nil
	}))

	err := bus.Publish(event.Deleted(uuid.New(), testTime))
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, order)
}

func TestPublishIsolatesSubscriberErrors(t *testing.T) {
	bus := eventbus.New(nil)
	secondRan := false

	bus.Subscribe(event.SubscriberFunc(func(e event.Event) error {
		return errors.New("boom")
	}))
	bus.Subscribe(event.SubscriberFunc(func(e event.Event) error {
		secondRan = true
		return nil
	}))

	err := bus.Publish(event.Deleted(uuid.New(), testTime))
	assert.NoError(t, err, "a subscriber error must not propagate out of Publish")
	assert.True(t, secondRan, "later subscribers must still run")
}
