package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/messaging"

	"salonhub-backend/internal/domain"
)

// NoopSink discards notifications.
type NoopSink struct{}

func (NoopSink) Notify(context.Context, domain.Notification) error { return nil }

// Messenger is the part of the FCM client the sink needs.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}

// FCMSink pushes notifications to a Firebase Cloud Messaging topic, which
// browsers show as native notifications.
type FCMSink struct {
	Client Messenger
	Topic  string
}

func (s FCMSink) Notify(ctx context.Context, n domain.Notification) error {
	if s.Client == nil || s.Topic == "" {
		return nil
	}
	_, err := s.Client.Send(ctx, &messaging.Message{
		Topic: s.Topic,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: map[string]string{
			"id":     n.ID,
			"source": string(n.Source),
			"branch": n.Branch,
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Tag:   n.ID,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// Subscribe adds a browser token to the sink's topic.
func (s FCMSink) Subscribe(ctx context.Context, token string) error {
	if s.Client == nil || s.Topic == "" {
		return nil
	}
	resp, err := s.Client.SubscribeToTopic(ctx, []string{token}, s.Topic)
	if err != nil {
		return fmt.Errorf("fcm subscribe: %w", err)
	}
	if resp != nil && resp.FailureCount > 0 && len(resp.Errors) > 0 {
		return fmt.Errorf("fcm subscribe: %s", resp.Errors[0].Reason)
	}
	return nil
}

// Event is what the dashboard stream receives. Sound asks the browser to play
// the notification chime.
type Event struct {
	Notification domain.Notification `json:"notification"`
	Sound        bool                `json:"sound"`
}

// ErrBroadcasterClosed is returned by Subscribe after Close.
var ErrBroadcasterClosed = errors.New("broadcaster closed")

// Broadcaster fans notifications out to connected dashboard streams. A slow
// listener misses events rather than blocking the notifier.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned func unregisters it and
// closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, ErrBroadcasterClosed
	}
	b.next++
	id := b.next
	ch := make(chan Event, 16)
	b.subs[id] = ch
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

func (b *Broadcaster) Notify(_ context.Context, n domain.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- Event{Notification: n, Sound: true}:
		default:
		}
	}
	return nil
}

// Listeners returns the number of connected streams.
func (b *Broadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close disconnects every listener.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
