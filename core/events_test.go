package f

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestEventBus_DeliversNotifications(t *testing.T) {
	bus := NewEventBus("test")
	defer bus.Close()

	var received []Notification
	bus.On(func(n Notification) {
		received = append(received, n)
	})

	bus.Fire(Notification{Code: "es", Status: Loaded})
	bus.Fire(Notification{Code: "fr", Status: Failed, Err: errors.New("boom")})

	assert.Equal(t, len(received), 2)
	assert.Equal(t, received[0].Code, LocaleCode("es"))
	assert.Equal(t, received[0].Status, Loaded)
	assert.Equal(t, received[1].Status, Failed)
}

func TestEventName(t *testing.T) {
	assert.Equal(t, EventName(Loaded), EventLocaleLoaded)
	assert.Equal(t, EventName(Failed), EventLocaleFailed)
}
