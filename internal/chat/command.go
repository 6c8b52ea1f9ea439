package chat

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the client to a room and replays history.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandToggleLike flips the client's like on a message.
	CommandToggleLike
	// CommandModerate applies a privileged flag change to a message.
	CommandModerate
)

// Command represents an action requested by a client.
type Command struct {
	Kind      CommandKind
	Room      string
	MessageID string
	Content   string
	MsgKind   string
	ReplyToID string
	Action    ModerationAction
}
