package chat

import "github.com/akudrin/livecast-server/internal/identity"

// Client is a connected chat participant as seen by the hub. The
// transport owns the websocket; the hub only ever talks through the
// buffered channels.
type Client struct {
	ID       string
	Identity identity.Identity
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels.
func NewClient(connID string, id identity.Identity) *Client {
	return &Client{
		ID:       connID,
		Identity: id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
	}
}
