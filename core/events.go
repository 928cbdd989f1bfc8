package f

import (
	"github.com/gookit/event"
	"github.com/soffa-projects/tutor-shell/log"
)

const (
	EventLocaleLoaded = "locale.loaded"
	EventLocaleFailed = "locale.failed"
)

const notificationKey = "notification"

// EventBus carries locale notifications to UI subscribers.
type EventBus struct {
	manager *event.Manager
}

func NewEventBus(name string) *EventBus {
	return &EventBus{manager: event.NewManager(name)}
}

func EventName(status LoadStatus) string {
	if status == Loaded {
		return EventLocaleLoaded
	}
	return EventLocaleFailed
}

func (b *EventBus) Fire(n Notification) {
	if err, _ := b.manager.Fire(EventName(n.Status), event.M{notificationKey: n}); err != nil {
		log.Error("[events] %s listener failed for %s: %v", EventName(n.Status), n.Code, err)
	}
}

func (b *EventBus) On(handler func(n Notification)) {
	listener := event.ListenerFunc(func(e event.Event) error {
		if n, ok := e.Get(notificationKey).(Notification); ok {
			handler(n)
		}
		return nil
	})
	b.manager.On(EventLocaleLoaded, listener, event.Normal)
	b.manager.On(EventLocaleFailed, listener, event.Normal)
}

func (b *EventBus) Close() {
	b.manager.Reset()
}
