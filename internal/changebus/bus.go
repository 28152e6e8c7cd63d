// Package changebus turns the document store into a publish/subscribe
// surface. Two delivery paths feed every subscription: the store's push
// feed when the backend has one, and a per-subscription poll ticker that
// guarantees convergence when push is silent, coalesced, or absent in the
// writer's own context. Both paths deduplicate on the record version.
package changebus

import (
	"context"
	"errors"
	"sync"
	"time"

	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/logger"
)

// Handler receives the new value of a changed record. Invoked from the bus
// goroutines; keep it fast or hand off.
type Handler func(name string, value []byte, version uint64)

type Bus struct {
	store docstore.Store
	poll  time.Duration

	mu     sync.Mutex
	subs   map[string]map[int]*Subscription
	nextID int
	feed   docstore.Feed
	done   chan struct{}
	closed bool
}

// New starts a bus over store. pollInterval bounds how stale a context can
// be when push delivery drops.
func New(store docstore.Store, pollInterval time.Duration) *Bus {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	b := &Bus{
		store: store,
		poll:  pollInterval,
		subs:  make(map[string]map[int]*Subscription),
		done:  make(chan struct{}),
	}
	if w, ok := store.(docstore.Watcher); ok {
		feed, err := w.Watch(context.Background())
		if err != nil {
			if !errors.Is(err, docstore.ErrWatchUnsupported) {
				logger.Log.Warnw("push feed unavailable, poll only", "error", err)
			}
		} else {
			b.feed = feed
			go b.pump()
		}
	}
	return b
}

// pump forwards push events to matching subscriptions.
func (b *Bus) pump() {
	for {
		select {
		case <-b.done:
			return
		case ev, ok := <-b.feed.Events():
			if !ok {
				return
			}
			b.mu.Lock()
			targets := make([]*Subscription, 0, len(b.subs[ev.Name]))
			for _, s := range b.subs[ev.Name] {
				targets = append(targets, s)
			}
			b.mu.Unlock()
			for _, s := range targets {
				s.deliver(ev.Value, ev.Version)
			}
		}
	}
}

// Subscribe registers interest in one record name. The returned
// Subscription must be released with Unsubscribe; it owns a poll timer.
// Subscribing after Close hands back an inert subscription that never
// delivers.
func (b *Bus) Subscribe(name string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &Subscription{
		bus:     b,
		name:    name,
		id:      b.nextID,
		handler: h,
		stop:    make(chan struct{}),
	}
	b.nextID++
	if b.closed {
		s.stopOnce.Do(func() { close(s.stop) })
		return s
	}
	if b.subs[name] == nil {
		b.subs[name] = make(map[int]*Subscription)
	}
	b.subs[name][s.id] = s
	go s.pollLoop(b.poll)
	return s
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.subs[s.name]; ok {
		delete(m, s.id)
		if len(m) == 0 {
			delete(b.subs, s.name)
		}
	}
}

// Close releases the push feed and stops every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var all []*Subscription
	for _, m := range b.subs {
		for _, s := range m {
			all = append(all, s)
		}
	}
	b.mu.Unlock()

	close(b.done)
	for _, s := range all {
		s.Unsubscribe()
	}
	if b.feed != nil {
		_ = b.feed.Close()
	}
}

// Subscription is a scoped resource: Subscribe acquires it, Unsubscribe
// releases the timer and the listener registration.
type Subscription struct {
	bus     *Bus
	name    string
	id      int
	handler Handler

	seenMu   sync.Mutex
	lastSeen uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// deliver invokes the handler when version is new, regardless of which
// path observed it first.
func (s *Subscription) deliver(value []byte, version uint64) {
	s.seenMu.Lock()
	if version <= s.lastSeen {
		s.seenMu.Unlock()
		return
	}
	s.lastSeen = version
	s.seenMu.Unlock()
	s.handler(s.name, value, version)
}

func (s *Subscription) pollLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			doc, err := s.bus.store.Read(context.Background(), s.name)
			if err != nil {
				if !errors.Is(err, docstore.ErrNotFound) {
					logger.Log.Warnw("poll read failed", "name", s.name, "error", err)
				}
				continue
			}
			s.deliver(doc.Value, doc.Version)
		}
	}
}

// Unsubscribe stops the poll timer and removes the listener. Idempotent.
func (s *Subscription) Unsubscribe() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.bus.remove(s)
	})
}
