package streaming

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"insafe-lab/pkg/logger"
)

type subscriber struct {
	ch  chan *Event
	sub *Subscription // nil receives everything
}

// EventBus distributes events to local subscribers and, when connected, to NATS
type EventBus struct {
	nats   *NATSPublisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// NewEventBus creates a new event bus. nats may be nil.
func NewEventBus(nats *NATSPublisher, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]*subscriber),
	}
}

// Publish publishes an event to all matching subscribers. A NATS failure is
// logged and the local broadcast still happens.
func (eb *EventBus) Publish(ctx context.Context, event *Event) error {
	if eb.nats != nil && eb.nats.IsConnected() {
		if err := eb.nats.PublishEvent(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, s := range eb.subscribers {
		if s.sub != nil && !s.sub.Matches(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return nil
}

// Subscribe registers a local subscriber and returns its channel and an
// unsubscribe function. The subscription also ends when ctx is cancelled.
func (eb *EventBus) Subscribe(ctx context.Context, sub *Subscription) (<-chan *Event, func()) {
	id := uuid.New().String()
	s := &subscriber{ch: make(chan *Event, 100), sub: sub}

	eb.mu.Lock()
	eb.subscribers[id] = s
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			eb.mu.Lock()
			defer eb.mu.Unlock()
			if _, ok := eb.subscribers[id]; ok {
				close(s.ch)
				delete(eb.subscribers, id)
				eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
			}
		})
	}

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			unsubscribe()
		}()
	}

	return s.ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close closes the event bus
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, s := range eb.subscribers {
		close(s.ch)
		delete(eb.subscribers, id)
	}

	if eb.nats != nil {
		eb.nats.Close()
	}
}
