// Package notify holds short-lived user-facing messages (success banners,
// import summaries, collaborator failures) and fans them out to subscribers.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long a notification stays active.
const DefaultTTL = 5 * time.Second

// Level classifies a notification.
type Level string

const (
	LevelInfo        Level = "info"
	LevelSuccess     Level = "success"
	LevelError       Level = "error"
	LevelDestructive Level = "destructive"
)

// Notification is one active message.
type Notification struct {
	ID          string    `json:"id"`
	Level       Level     `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Publisher is the write side of the bus, used by services.
type Publisher interface {
	Push(level Level, title, description string) Notification
}

type subscriber struct {
	ch   chan []Notification
	once sync.Once
}

// Bus keeps the active notifications and expires each one after its TTL.
// Subscribers receive a snapshot of the active list after every change; a slow
// subscriber only ever sees the latest snapshot.
type Bus struct {
	mu      sync.Mutex
	ttl     time.Duration
	active  []Notification
	timers  map[string]*time.Timer
	subs    map[int]*subscriber
	nextSub int
	closed  bool
	logger  *zap.Logger
}

// NewBus builds a bus. A non-positive ttl falls back to DefaultTTL.
func NewBus(ttl time.Duration, logger *zap.Logger) *Bus {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
		subs:   make(map[int]*subscriber),
		logger: logger,
	}
}

// Push adds a notification and schedules its expiry.
func (b *Bus) Push(level Level, title, description string) Notification {
	n := Notification{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return n
	}

	b.active = append(b.active, n)
	b.timers[n.ID] = time.AfterFunc(b.ttl, func() { b.expire(n.ID) })
	b.broadcastLocked()

	b.logger.Debug("notification pushed", zap.String("level", string(level)), zap.String("title", title))
	return n
}

// Active returns a copy of the active notifications, oldest first.
func (b *Bus) Active() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Subscribe registers a listener. The current snapshot is delivered right
// away. The returned function unsubscribes and closes the channel; calling it
// more than once is safe.
func (b *Bus) Subscribe() (<-chan []Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscriber{ch: make(chan []Notification, 1)}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := b.nextSub
	b.nextSub++
	b.subs[id] = sub
	sub.ch <- b.snapshotLocked()

	return sub.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}

// Close stops pending expiries and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, t := range b.timers {
		t.Stop()
		delete(b.timers, id)
	}
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
	b.active = nil
}

func (b *Bus) expire(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	delete(b.timers, id)

	kept := b.active[:0]
	removed := false
	for _, n := range b.active {
		if n.ID == id {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	b.active = kept
	if removed {
		b.broadcastLocked()
	}
}

func (b *Bus) snapshotLocked() []Notification {
	out := make([]Notification, len(b.active))
	copy(out, b.active)
	return out
}

func (b *Bus) broadcastLocked() {
	for _, sub := range b.subs {
		snapshot := b.snapshotLocked()
		select {
		case sub.ch <- snapshot:
		default:
			// drop the stale snapshot the subscriber has not read yet
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snapshot:
			default:
			}
		}
	}
}
