package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/identity"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestOrchestrator(historyLimit int) *Orchestrator {
	return NewOrchestrator(newTestLedger(), NewPresence(), NewRooms(), historyLimit, nopLogger())
}

// testLedger is a minimal in-package ledger so core tests need no
// storage backend. The real implementations live in internal/store.
type testLedger struct {
	mu     sync.Mutex
	byID   map[string]*Message
	byRoom map[string][]string
}

func newTestLedger() *testLedger {
	return &testLedger{
		byID:   make(map[string]*Message),
		byRoom: make(map[string][]string),
	}
}

func (l *testLedger) Save(_ context.Context, msg *Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored := *msg
	l.byID[msg.ID] = &stored
	l.byRoom[msg.RoomID] = append(l.byRoom[msg.RoomID], msg.ID)
	return nil
}

func (l *testLedger) FindByRoom(_ context.Context, roomID string, limit int) ([]*Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := l.byRoom[roomID]
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	out := make([]*Message, 0, len(ids))
	for _, id := range ids {
		copied := *l.byID[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (l *testLedger) FindByID(_ context.Context, id string) (*Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	copied := *msg
	return &copied, nil
}

func (l *testLedger) Mutate(_ context.Context, id string, fn func(*Message) error) (*Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	draft := *msg
	draft.LikedBy = append([]string(nil), msg.LikedBy...)
	if err := fn(&draft); err != nil {
		return nil, err
	}
	l.byID[id] = &draft
	copied := draft
	return &copied, nil
}

func (l *testLedger) Close() error { return nil }

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustOnlineCount(t *testing.T, ch <-chan *Event, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == EventOnlineCount && ev.OnlineCount == want {
				return
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected online count %d not observed", want)
}

func userIdentity(id, name string) identity.Identity {
	return identity.Identity{ID: id, DisplayName: name, Role: identity.RoleUser}
}

func hostIdentity(id, name string) identity.Identity {
	return identity.Identity{ID: id, DisplayName: name, Role: identity.RoleHost}
}

func moderatorIdentity(id, name string) identity.Identity {
	return identity.Identity{ID: id, DisplayName: name, Role: identity.RoleModerator}
}
