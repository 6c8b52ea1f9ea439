package chat

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventHistory delivers message history to a client upon joining a room.
	EventHistory EventKind = iota
	// EventMessageCreated notifies room members about a new message.
	EventMessageCreated
	// EventMessageLiked notifies room members about a like toggle.
	EventMessageLiked
	// EventMessageModerated notifies room members about a flag change.
	EventMessageModerated
	// EventOnlineCount announces the process-wide connection count.
	EventOnlineCount
	// EventError notifies the caller about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind        EventKind
	Room        string
	Message     *Message
	Messages    []*Message // for EventHistory
	OnlineCount int
	Error       *CoreError
}
