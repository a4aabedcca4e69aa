package gueststore

import "sync"

type EventKind string

const (
	CartChanged      EventKind = "cart"
	FavoritesChanged EventKind = "favorites"
	Cleared          EventKind = "cleared"
	// ExternalChange means another process rewrote the guest state.
	ExternalChange EventKind = "external"
	// SessionChanged follows sign-in and sign-out. It carries no counters;
	// subscribers re-read them from the now authoritative source.
	SessionChanged EventKind = "session"
)

// Event carries the badge counters after a change.
type Event struct {
	Kind           EventKind
	CartCount      int
	FavoritesCount int
}

// Bus delivers events to subscribers synchronously, in subscription order,
// on the publishing goroutine.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs []subscription
}

type subscription struct {
	id int
	fn func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}
