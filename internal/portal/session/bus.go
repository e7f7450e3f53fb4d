package session

import "sync"

// EventKind identifies a session lifecycle event.
type EventKind string

const (
	// EventLogin fires after a successful login has been persisted.
	EventLogin EventKind = "login"

	// EventLogout fires once per transition from logged-in to logged-out,
	// whether user-initiated or forced by a failed token refresh.
	EventLogout EventKind = "logout"

	// EventTokenRefreshed fires after the transport rotated the access
	// token mid-flight.
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is a session state change announcement.
type Event struct {
	Kind EventKind

	// Username is set for EventLogin.
	Username string

	// Access is the new access token, set for EventTokenRefreshed.
	Access string
}

// Bus fans session events out to subscribers. Publishing never blocks: a
// subscriber that is not draining its channel misses events rather than
// stalling the transport's refresh path.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of future events and a cancel function. The
// channel is buffered; cancel closes it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan Event, 8)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		select {
		case sub <- ev:
		default:
		}
	}
}
