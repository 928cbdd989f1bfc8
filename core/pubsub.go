package f

import "context"

// LocalesTopic receives one message per locale notification.
const LocalesTopic = "locales"

type PubSubProvider interface {
	Ping() error
	Init() error
	Publish(ctx context.Context, topic string, message string) error
	Subscribe(ctx context.Context, topic string, handler func(message string))
}
