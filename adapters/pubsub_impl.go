package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/h"
	"github.com/soffa-projects/tutor-shell/log"
)

func NewPubSubProvider(provider string) (f.PubSubProvider, error) {
	res, err := h.ParseUrl(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pubsub provider: %w", err)
	}
	switch res.Scheme {
	case "redis":
		log.Info("using redis pubsub provider...")
		return NewRedisPubSubProvider(res)
	case "fake", "faker", "dummy":
		log.Info("using fake pubsub provider...")
		return NewFakePubSubProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported pubsub provider: %s", provider)
	}
}

// LocaleMessage is the payload published on f.LocalesTopic.
type LocaleMessage struct {
	Instance string `json:"instance"`
	Locale   string `json:"locale"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// ForwardNotifications publishes every registry notification on the locales topic,
// tagged with the publishing instance.
func ForwardNotifications(ctx context.Context, registry f.Registry, provider f.PubSubProvider, instanceId string) {
	registry.Subscribe(func(n f.Notification) {
		msg := LocaleMessage{Instance: instanceId, Locale: string(n.Code), Status: n.Status.String()}
		if n.Err != nil {
			msg.Error = n.Err.Error()
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Error("[pubsub] unable to encode locale notification: %v", err)
			return
		}
		if err := provider.Publish(ctx, f.LocalesTopic, string(payload)); err != nil {
			log.Warn("[pubsub] locale notification for %s not forwarded: %v", n.Code, err)
		}
	})
}

// FollowPeers listens to the locales topic. When another instance reports a
// remote catalog as loaded while the local copy is Failed, the local copy is
// reloaded. Messages from instanceId itself are ignored.
func FollowPeers(ctx context.Context, registry f.Registry, loader f.Loader, provider f.PubSubProvider, instanceId string) {
	provider.Subscribe(ctx, f.LocalesTopic, func(message string) {
		var msg LocaleMessage
		if err := json.Unmarshal([]byte(message), &msg); err != nil {
			log.Warn("[pubsub] ignoring malformed locale message: %v", err)
			return
		}
		if msg.Instance == instanceId || msg.Status != f.Loaded.String() {
			return
		}
		code := f.LocaleCode(msg.Locale)
		entry, ok := registry.Get(code)
		if !ok || entry.Source.Kind != f.SourceRemote || entry.Status != f.Failed {
			return
		}
		log.WithLocale(msg.Locale).Infof("instance %s loaded the catalog, reloading", msg.Instance)
		go func() {
			if _, err := loader.Reload(ctx, code); err != nil {
				log.WithLocale(msg.Locale).Warnf("reload after peer notification failed: %v", err)
			}
		}()
	})
}

// ------------------------------------------------------------------------------------------------------------------
// REDIS PUBSUB PROVIDER IMPL
// ------------------------------------------------------------------------------------------------------------------

type RedisPubSubProvider struct {
	client *redis.Client
}

func NewRedisPubSubProvider(cfg h.Url) (f.PubSubProvider, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("redis connection successful")
	return &RedisPubSubProvider{
		client: client,
	}, nil
}

func (p *RedisPubSubProvider) Init() error {
	return nil
}

func (p *RedisPubSubProvider) Publish(ctx context.Context, topic string, message string) error {
	err := p.client.Publish(ctx, topic, message).Err()
	if err != nil {
		log.Error("[redis]failed to publish message: %v", err)
		return err
	}
	log.Debug("[redis]message published to topic: %s", topic)
	return nil
}

func (p *RedisPubSubProvider) Subscribe(ctx context.Context, topic string, handler func(message string)) {
	go func() {
		sub := p.client.Subscribe(ctx, topic)
		defer sub.Close()

		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Error("[redis] failed to receive message: %v", err)
				continue
			}
			log.Debug("[redis] event received: %s", msg.Payload)
			go handler(msg.Payload)
		}
	}()
}

func (p *RedisPubSubProvider) Ping() error {
	return p.client.Ping(context.Background()).Err()
}

// ------------------------------------------------------------------------------------------------------------------
// FAKE PUBSUB PROVIDER IMPL
// ------------------------------------------------------------------------------------------------------------------

type FakePubSubProvider struct {
	mu          sync.Mutex
	sent        map[string]int
	received    map[string]int
	messages    map[string][]string
	subscribers map[string][]func(message string)
}

func NewFakePubSubProvider() f.PubSubProvider {
	return &FakePubSubProvider{
		sent:        make(map[string]int),
		received:    make(map[string]int),
		messages:    make(map[string][]string),
		subscribers: make(map[string][]func(message string)),
	}
}

func (p *FakePubSubProvider) Ping() error {
	return nil
}

func (p *FakePubSubProvider) Init() error {
	return nil
}

// Publish delivers synchronously, in subscription order.
func (p *FakePubSubProvider) Publish(ctx context.Context, topic string, message string) error {
	p.mu.Lock()
	p.sent[topic]++
	p.messages[topic] = append(p.messages[topic], message)
	handlers := append([]func(string){}, p.subscribers[topic]...)
	p.received[topic] += len(handlers)
	p.mu.Unlock()
	for _, handler := range handlers {
		handler(message)
	}
	return nil
}

func (p *FakePubSubProvider) Subscribe(ctx context.Context, topic string, handler func(message string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers[topic] = append(p.subscribers[topic], handler)
}

func (p *FakePubSubProvider) Received(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.received[topic]
}

func (p *FakePubSubProvider) Sent(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent[topic]
}

func (p *FakePubSubProvider) Messages(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.messages[topic]...)
}
