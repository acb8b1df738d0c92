package identity

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 256

// Hub fans auth-state events out to subscribers. Each subscriber has its own
// goroutine so a slow callback never delays the others, and events reach a
// given subscriber in the order they were published.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
}

type subscriber struct {
	id      uint64
	hub     *Hub
	cb      func(Event)
	events  chan Event
	done    chan struct{}
	stopped atomic.Bool
	once    sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

func (h *Hub) Subscribe(cb func(Event)) Subscription {
	h.mu.Lock()
	h.nextID++
	s := &subscriber{
		id:     h.nextID,
		hub:    h,
		cb:     cb,
		events: make(chan Event, subscriberBuffer),
		done:   make(chan struct{}),
	}
	h.subs[s.id] = s
	h.mu.Unlock()

	go s.run()
	return s
}

// Publish queues ev for every current subscriber. A subscriber whose buffer
// is full misses the event.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		select {
		case s.events <- ev:
		default:
			slog.Warn("Auth event dropped, subscriber buffer full",
				"subscriber", s.id,
				"event", ev.Type,
			)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			if s.stopped.Load() {
				return
			}
			s.dispatch(ev)
		}
	}
}

func (s *subscriber) dispatch(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Auth event callback panicked", "subscriber", s.id, "event", ev.Type, "panic", r)
		}
	}()
	s.cb(ev)
}

func (s *subscriber) Unsubscribe() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.done)
	})
}
