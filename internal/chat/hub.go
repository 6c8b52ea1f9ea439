package chat

import (
	"context"

	"github.com/rs/zerolog"
)

// Hub drives the chat engine. A single goroutine owns all fan-out
// state and handles one command to completion before dequeuing the
// next, which is what makes every use case atomic and gives FIFO
// delivery per room without locking.
type Hub struct {
	orchestrator *Orchestrator
	log          *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand

	// Closed when Run exits so register/unregister/pump senders
	// never block against a stopped loop.
	done chan struct{}

	// Confined to the Run goroutine.
	clients map[string]*Client
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub builds a hub around the orchestrator.
func NewHub(orchestrator *Orchestrator, logger *zerolog.Logger) *Hub {
	return &Hub{
		orchestrator: orchestrator,
		log:          logger,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		commands:     make(chan clientCommand, 64),
		done:         make(chan struct{}),
		clients:      make(map[string]*Client),
	}
}

// RegisterClient hands a connected client to the hub. Blocks until the
// hub loop has registered presence, so the client's first command can
// never observe an unregistered connection.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
		go h.pump(c)
	case <-h.done:
	}
}

// UnregisterClient detaches a disconnected client. The caller must
// close c.Commands afterwards to stop the pump. Safe to call for a
// client the hub already evicted, and after the hub has stopped.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// pump forwards the client's commands into the hub's single queue.
// Exits when the transport closes c.Commands or the hub stops.
func (h *Hub) pump(c *Client) {
	for cmd := range c.Commands {
		select {
		case h.commands <- clientCommand{client: c, cmd: cmd}:
		case <-h.done:
			return
		}
	}
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c.ID] = c
			h.orchestrator.Presence().Register(c.ID, c.Identity)
			h.broadcastOnlineCount()
		case c := <-h.unregister:
			h.drop(c.ID)
			h.broadcastOnlineCount()
		case cc := <-h.commands:
			if _, ok := h.clients[cc.client.ID]; !ok {
				continue // already evicted, stale command
			}
			h.handle(ctx, cc.client, cc.cmd)
		case <-ctx.Done():
			close(h.done)
			return
		}
	}
}

func (h *Hub) handle(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		history, err := h.orchestrator.Join(ctx, c.ID, cmd.Room)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.deliver(c, &Event{Kind: EventHistory, Room: cmd.Room, Messages: history})
	case CommandLeaveRoom:
		h.orchestrator.LeaveRoom(cmd.Room, c.ID)
	case CommandSendMessage:
		msg, err := h.orchestrator.Send(ctx, c.ID, cmd.Room, cmd.Content, cmd.MsgKind, cmd.ReplyToID)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.fanOutRoom(msg.RoomID, &Event{Kind: EventMessageCreated, Room: msg.RoomID, Message: msg})
	case CommandToggleLike:
		msg, err := h.orchestrator.Like(ctx, c.ID, cmd.MessageID)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.fanOutRoom(msg.RoomID, &Event{Kind: EventMessageLiked, Room: msg.RoomID, Message: msg})
	case CommandModerate:
		msg, err := h.orchestrator.Moderate(ctx, c.ID, cmd.MessageID, cmd.Action)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.fanOutRoom(msg.RoomID, &Event{Kind: EventMessageModerated, Room: msg.RoomID, Message: msg})
	default:
		h.sendError(c, ErrInvalidInput)
	}
}

func (h *Hub) sendError(c *Client, err error) {
	h.deliver(c, &Event{Kind: EventError, Error: coreErrorFrom(err)})
}

// fanOutRoom delivers an event to every member of a room. A recipient
// whose buffer is full is treated as unreachable: it is evicted from
// presence and membership so one dead connection never stalls or
// aborts delivery to the rest of the room.
func (h *Hub) fanOutRoom(roomID string, ev *Event) {
	var dead []string
	for _, connID := range h.orchestrator.Rooms().MembersOf(roomID) {
		c, ok := h.clients[connID]
		if !ok {
			dead = append(dead, connID)
			continue
		}
		if !h.deliver(c, ev) {
			dead = append(dead, connID)
		}
	}
	for _, connID := range dead {
		h.drop(connID)
	}
	if len(dead) > 0 {
		h.broadcastOnlineCount()
	}
}

// broadcastOnlineCount announces the connection count to everyone.
// Dropped silently for unreachable clients; they get evicted on the
// next room fan-out instead of recursing here.
func (h *Hub) broadcastOnlineCount() {
	ev := &Event{Kind: EventOnlineCount, OnlineCount: h.orchestrator.Presence().Count()}
	for _, c := range h.clients {
		h.deliver(c, ev)
	}
}

// deliver pushes an event without blocking the hub loop. Reports
// whether the client's buffer had room.
func (h *Hub) deliver(c *Client, ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		h.log.Warn().Str("conn_id", c.ID).Msg("event buffer full")
		return false
	}
}

func (h *Hub) drop(connID string) {
	h.orchestrator.Leave(connID)
	delete(h.clients, connID)
}
