// Package memory implements the chat ledger on process-local maps.
// It backs tests and deployments that are fine losing chat history on
// restart; the sqlite ledger is the durable alternative.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/akudrin/livecast-server/internal/chat"
)

// Ledger is an in-memory chat.Ledger. All methods copy messages on
// the way in and out, so callers can never alias ledger state.
type Ledger struct {
	mu     sync.Mutex
	byID   map[string]*chat.Message
	byRoom map[string][]string // insertion-ordered message ids per room
}

// New builds an empty ledger.
func New() *Ledger {
	return &Ledger{
		byID:   make(map[string]*chat.Message),
		byRoom: make(map[string][]string),
	}
}

// Save appends a message.
func (l *Ledger) Save(_ context.Context, msg *chat.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[msg.ID]; exists {
		return fmt.Errorf("duplicate message id %s: %w", msg.ID, chat.ErrInvalidInput)
	}
	stored := cloneMessage(msg)
	l.byID[stored.ID] = stored
	l.byRoom[stored.RoomID] = append(l.byRoom[stored.RoomID], stored.ID)
	return nil
}

// FindByRoom returns up to limit most recent messages, oldest first.
func (l *Ledger) FindByRoom(_ context.Context, roomID string, limit int) ([]*chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.byRoom[roomID]
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	out := make([]*chat.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneMessage(l.byID[id]))
	}
	return out, nil
}

// FindByID returns a copy of the message or chat.ErrNotFound.
func (l *Ledger) FindByID(_ context.Context, id string) (*chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, chat.ErrNotFound)
	}
	return cloneMessage(msg), nil
}

// Mutate applies fn to the stored message under the ledger lock. The
// lock spans the whole read-modify-write, which is what keeps like
// toggles from losing updates under concurrent callers.
func (l *Ledger) Mutate(_ context.Context, id string, fn func(*chat.Message) error) (*chat.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, chat.ErrNotFound)
	}

	draft := cloneMessage(stored)
	if err := fn(draft); err != nil {
		return nil, err
	}
	l.byID[id] = draft
	return cloneMessage(draft), nil
}

// Close is a no-op for the in-memory ledger.
func (l *Ledger) Close() error { return nil }

func cloneMessage(m *chat.Message) *chat.Message {
	out := *m
	out.LikedBy = append([]string(nil), m.LikedBy...)
	return &out
}

var _ chat.Ledger = (*Ledger)(nil)
