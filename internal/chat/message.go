package chat

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// MessageKind tags a message for rendering. It carries no authority:
// moderation power comes from the sender's role, never from the kind.
type MessageKind string

const (
	KindUser      MessageKind = "user"
	KindSystem    MessageKind = "system"
	KindHost      MessageKind = "host"
	KindModerator MessageKind = "moderator"
)

// Message is the domain model for a chat message. Author fields are a
// snapshot taken at send time; later identity changes do not rewrite
// history. Messages are never physically deleted: Moderated marks a
// message hidden while keeping the record for audit.
type Message struct {
	ID           string
	RoomID       string
	Content      string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
	Kind         MessageKind
	ReplyToID    string
	CreatedAt    time.Time
	LikeCount    int
	LikedBy      []string
	Pinned       bool
	Highlighted  bool
	Moderated    bool
}

// NewMessageID returns a ULID: lexicographic order follows creation
// time, so ledger scans come back already time-sorted.
func NewMessageID() string {
	return ulid.Make().String()
}

// LikedByContains reports whether the identity already liked the message.
func (m *Message) LikedByContains(identityID string) bool {
	for _, id := range m.LikedBy {
		if id == identityID {
			return true
		}
	}
	return false
}

// ToggleLike adds the identity to LikedBy, or removes it if already
// present, keeping LikeCount in sync. Callers must run this inside the
// ledger's atomic Mutate so concurrent toggles on the same message
// cannot lose updates.
func (m *Message) ToggleLike(identityID string) {
	for i, id := range m.LikedBy {
		if id == identityID {
			m.LikedBy = append(m.LikedBy[:i], m.LikedBy[i+1:]...)
			m.LikeCount = len(m.LikedBy)
			return
		}
	}
	m.LikedBy = append(m.LikedBy, identityID)
	m.LikeCount = len(m.LikedBy)
}

func normalizeKind(kind string) MessageKind {
	switch MessageKind(kind) {
	case KindSystem, KindHost, KindModerator:
		return MessageKind(kind)
	default:
		return KindUser
	}
}

func trimContent(content string) string {
	return strings.TrimSpace(content)
}
