// Package lifecycle announces broadcast start and end transitions to
// every connected listener, independent of the chat engine. Listeners
// never authenticate; a late joiner is caught up through snapshot
// replay so it cannot tell a running broadcast from one it watched
// start live.
package lifecycle

import (
	"sync"

	"github.com/rs/zerolog"
)

// Status marks which side of the lifecycle a payload describes.
type Status string

const (
	StatusLive  Status = "LIVE"
	StatusEnded Status = "ENDED"
)

// Payload is the wire-facing description of a broadcast transition.
type Payload struct {
	BroadcastID  string `json:"broadcastId"`
	Status       Status `json:"status"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	StreamRef    string `json:"streamRef,omitempty"`
	MediaRoomRef string `json:"mediaRoomRef,omitempty"`
	MediaToken   string `json:"mediaToken,omitempty"`
}

// EventKind distinguishes started from ended notifications.
type EventKind string

const (
	EventStarted EventKind = "broadcast-started"
	EventEnded   EventKind = "broadcast-ended"
)

// Event is what subscribers receive.
type Event struct {
	Kind    EventKind
	Payload Payload
}

// Publisher keeps the set of currently active broadcasts and fans out
// transitions to all subscribers. Single mutex over both the snapshot
// map and the subscriber set: Subscribe replays the snapshot and joins
// the live feed under one critical section, so no transition can slip
// between catch-up and live delivery.
type Publisher struct {
	mu          sync.Mutex
	active      map[string]Payload
	order       []string // broadcast ids in start order, for stable replay
	subscribers map[uint64]chan Event
	nextID      uint64
	log         *zerolog.Logger
}

// NewPublisher builds a publisher with no active broadcasts.
func NewPublisher(logger *zerolog.Logger) *Publisher {
	return &Publisher{
		active:      make(map[string]Payload),
		subscribers: make(map[uint64]chan Event),
		log:         logger,
	}
}

// Started records a broadcast as live and notifies every listener.
// A second Started for the same id is a republish: the snapshot entry
// is overwritten, not treated as an error.
func (p *Publisher) Started(broadcastID string, payload Payload) {
	payload.BroadcastID = broadcastID
	payload.Status = StatusLive

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.active[broadcastID]; !exists {
		p.order = append(p.order, broadcastID)
	}
	p.active[broadcastID] = payload
	p.publishLocked(Event{Kind: EventStarted, Payload: payload})
	p.log.Info().Str("broadcast_id", broadcastID).Int("active", len(p.active)).Msg("broadcast started")
}

// Ended removes the broadcast and emits a terminal payload. Ending an
// unknown broadcast still notifies listeners but changes no state.
func (p *Publisher) Ended(broadcastID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	terminal := Payload{BroadcastID: broadcastID, Status: StatusEnded}
	if prior, exists := p.active[broadcastID]; exists {
		terminal.Title = prior.Title
		delete(p.active, broadcastID)
		for i, id := range p.order {
			if id == broadcastID {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
	}
	p.publishLocked(Event{Kind: EventEnded, Payload: terminal})
	p.log.Info().Str("broadcast_id", broadcastID).Int("active", len(p.active)).Msg("broadcast ended")
}

// SnapshotForNewClient returns the active broadcasts in start order,
// each shaped exactly like a started event payload.
func (p *Publisher) SnapshotForNewClient() []Payload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Publisher) snapshotLocked() []Payload {
	out := make([]Payload, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.active[id])
	}
	return out
}

// ActiveCount returns the number of currently live broadcasts.
func (p *Publisher) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// Subscribe registers a listener. The returned channel first carries
// one started-shaped event per active broadcast, then live events in
// publish order. The unsubscribe func is idempotent.
func (p *Publisher) Subscribe() (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot := p.snapshotLocked()
	ch := make(chan Event, 64+len(snapshot))
	for _, payload := range snapshot {
		ch <- Event{Kind: EventStarted, Payload: payload}
	}

	id := p.nextID
	p.nextID++
	p.subscribers[id] = ch

	unsub := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(ch)
		}
	}
	return ch, unsub
}

// SubscriberCount returns the number of attached listeners.
func (p *Publisher) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers)
}

// publishLocked delivers to all subscribers without blocking. A full
// subscriber buffer means a stalled consumer; the event is dropped for
// that listener only.
func (p *Publisher) publishLocked(ev Event) {
	for id, ch := range p.subscribers {
		select {
		case ch <- ev:
		default:
			p.log.Warn().Uint64("subscriber", id).Msg("lifecycle subscriber buffer full, dropping event")
		}
	}
}
