// Package proto defines the wire envelopes for the chat websocket.
// Lifecycle SSE payloads are defined next to the publisher; this
// package only covers the bidirectional channel.
package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "join-room"
	InboundTypeLeaveRoom   = "leave-room"
	InboundTypeSendMessage = "send-message"
	InboundTypeToggleLike  = "toggle-like"
	InboundTypeModerate    = "moderate-message"

	OutboundTypeHistory          = "history"
	OutboundTypeMessageCreated   = "message-created"
	OutboundTypeMessageLiked     = "message-liked"
	OutboundTypeMessageModerated = "message-moderated"
	OutboundTypeOnlineCount      = "online-count"
	OutboundTypeError            = "error"
)

// JoinRoomData subscribes the connection to a room.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	RoomID    string `json:"roomId"`
	Content   string `json:"content"`
	Kind      string `json:"kind,omitempty"`
	ReplyToID string `json:"replyToId,omitempty"`
}

// ToggleLikeData flips the caller's like on a message.
type ToggleLikeData struct {
	MessageID string `json:"messageId"`
}

// ModerateData applies a privileged flag change to a message.
type ModerateData struct {
	MessageID string `json:"messageId"`
	Action    string `json:"action"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// WireMessage is the outbound shape of a chat message.
type WireMessage struct {
	ID           string   `json:"id"`
	RoomID       string   `json:"roomId"`
	Content      string   `json:"content"`
	AuthorID     string   `json:"authorId"`
	AuthorName   string   `json:"authorName"`
	AuthorAvatar string   `json:"authorAvatar,omitempty"`
	Kind         string   `json:"kind"`
	ReplyToID    string   `json:"replyToId,omitempty"`
	CreatedAt    int64    `json:"createdAt"`
	LikeCount    int      `json:"likeCount"`
	LikedBy      []string `json:"likedBy"`
	Pinned       bool     `json:"pinned"`
	Highlighted  bool     `json:"highlighted"`
	Moderated    bool     `json:"moderated"`
}

// HistoryData replays a room's recent messages to the joining client.
type HistoryData struct {
	RoomID   string        `json:"roomId"`
	Messages []WireMessage `json:"messages"`
}

// LikedData announces a like toggle to the message's room.
type LikedData struct {
	MessageID string   `json:"messageId"`
	LikeCount int      `json:"likeCount"`
	LikedBy   []string `json:"likedBy"`
}

// ModeratedData announces a moderation flag change to the message's room.
type ModeratedData struct {
	MessageID   string `json:"messageId"`
	Pinned      bool   `json:"pinned"`
	Highlighted bool   `json:"highlighted"`
	Moderated   bool   `json:"moderated"`
}

// OnlineCountData announces the process-wide connection count.
type OnlineCountData struct {
	Count int `json:"count"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
