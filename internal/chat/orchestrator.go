package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/identity"
)

// DefaultHistoryLimit caps how many messages a join replays when no
// explicit limit is configured.
const DefaultHistoryLimit = 100

// ModerationAction names a privileged mutation of a message's flags.
type ModerationAction string

const (
	ActionPin         ModerationAction = "pin"
	ActionUnpin       ModerationAction = "unpin"
	ActionHighlight   ModerationAction = "highlight"
	ActionUnhighlight ModerationAction = "unhighlight"
	ActionDelete      ModerationAction = "delete"
)

// Orchestrator implements the chat use cases on top of the ledger,
// presence registry and room membership manager. Each use case either
// completes fully or leaves no side effects behind.
type Orchestrator struct {
	ledger       Ledger
	presence     *Presence
	rooms        *Rooms
	historyLimit int
	log          *zerolog.Logger
}

// NewOrchestrator wires the use cases. historyLimit <= 0 selects the
// default of 100.
func NewOrchestrator(ledger Ledger, presence *Presence, rooms *Rooms, historyLimit int, logger *zerolog.Logger) *Orchestrator {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Orchestrator{
		ledger:       ledger,
		presence:     presence,
		rooms:        rooms,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// Presence exposes the registry for transport-level registration.
func (o *Orchestrator) Presence() *Presence { return o.presence }

// Rooms exposes the membership manager for fan-out targeting.
func (o *Orchestrator) Rooms() *Rooms { return o.rooms }

// Join subscribes the connection to a room and replays its recent
// history, oldest first. Rooms are not pre-declared: joining a room
// nobody has spoken in yields an empty history, not an error.
func (o *Orchestrator) Join(ctx context.Context, connID, roomID string) ([]*Message, error) {
	history, err := o.ledger.FindByRoom(ctx, roomID, o.historyLimit)
	if err != nil {
		o.log.Error().Err(err).Str("room_id", roomID).Msg("history lookup failed")
		return nil, fmt.Errorf("load history: %w", err)
	}
	o.rooms.Join(roomID, connID)
	return history, nil
}

// Send validates and persists a message, returning it for fan-out to
// the room's members. The author fields are snapshotted from the
// connection's identity at this moment.
func (o *Orchestrator) Send(ctx context.Context, connID, roomID, content, kind, replyToID string) (*Message, error) {
	sender, ok := o.presence.Get(connID)
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", connID, ErrUnknownConnection)
	}

	content = trimContent(content)
	if content == "" {
		return nil, fmt.Errorf("empty content: %w", ErrInvalidInput)
	}

	msg := &Message{
		ID:           NewMessageID(),
		RoomID:       roomID,
		Content:      content,
		AuthorID:     sender.ID,
		AuthorName:   sender.DisplayName,
		AuthorAvatar: sender.AvatarRef,
		Kind:         normalizeKind(kind),
		ReplyToID:    replyToID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := o.ledger.Save(ctx, msg); err != nil {
		o.log.Error().Err(err).Str("room_id", roomID).Msg("message save failed")
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// Like toggles the connection identity's like on a message. The whole
// read-modify-write runs inside the ledger's per-message critical
// section, so concurrent toggles cannot lose updates.
func (o *Orchestrator) Like(ctx context.Context, connID, messageID string) (*Message, error) {
	liker, ok := o.presence.Get(connID)
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", connID, ErrUnknownConnection)
	}

	return o.ledger.Mutate(ctx, messageID, func(m *Message) error {
		m.ToggleLike(liker.ID)
		return nil
	})
}

// Moderate applies a privileged flag change. Requires a moderator or
// host identity. Delete is soft: the record stays in the ledger with
// Moderated set, and keeps its pin/highlight flags for a later un-hide.
func (o *Orchestrator) Moderate(ctx context.Context, connID, messageID string, action ModerationAction) (*Message, error) {
	actor, ok := o.presence.Get(connID)
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", connID, ErrUnknownConnection)
	}
	if !identity.CanModerate(actor.Role) {
		return nil, fmt.Errorf("role %s cannot moderate: %w", actor.Role, ErrForbidden)
	}

	return o.ledger.Mutate(ctx, messageID, func(m *Message) error {
		switch action {
		case ActionPin:
			m.Pinned = true
		case ActionUnpin:
			m.Pinned = false
		case ActionHighlight:
			m.Highlighted = true
		case ActionUnhighlight:
			m.Highlighted = false
		case ActionDelete:
			m.Moderated = true
		default:
			return fmt.Errorf("unknown action %q: %w", action, ErrInvalidInput)
		}
		return nil
	})
}

// Leave drops the connection from every room and from presence.
// Idempotent: leaving an unknown connection succeeds silently.
func (o *Orchestrator) Leave(connID string) {
	o.rooms.LeaveAll(connID)
	o.presence.Unregister(connID)
}

// LeaveRoom drops the connection from a single room without touching
// presence or other memberships.
func (o *Orchestrator) LeaveRoom(roomID, connID string) {
	o.rooms.Leave(roomID, connID)
}
