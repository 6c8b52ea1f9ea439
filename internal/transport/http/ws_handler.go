package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/identity"
	"github.com/akudrin/livecast-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to chat.Client.
type WSHandler struct {
	hub      *chat.Hub
	resolver *identity.Resolver
	limiter  *rateLimiter
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *chat.Hub, resolver *identity.Resolver, limiter *rateLimiter, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, resolver: resolver, limiter: limiter, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	if !h.limiter.allow(clientIP(r)) {
		stdhttp.Error(w, "too many connections", stdhttp.StatusTooManyRequests)
		return
	}

	// Identity resolution fails open: a bad credential still gets an
	// anonymous connection, never a refusal.
	id := h.resolver.Resolve(ctx, bearerCredential(r))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := chat.NewClient(uuid.NewString(), id)
	h.hub.RegisterClient(client)
	h.log.Debug().Str("conn_id", client.ID).Str("identity", id.ID).Str("role", string(id.Role)).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	// Disconnect cleanup: presence and all memberships go with the
	// connection, then the command pump is released.
	h.hub.UnregisterClient(client)
	close(client.Commands)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *chat.Client) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		cmd, protoErr, err := inboundToCommand(inbound)
		if err != nil {
			// Malformed payloads are recoverable: the caller gets an
			// error frame and the connection stays up.
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("malformed inbound payload")
			protoErr = &proto.Error{Code: chat.ErrCodeInvalidInput, Msg: "malformed data payload"}
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}
		if cmd != nil {
			client.Commands <- cmd
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *chat.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// bearerCredential pulls the optional credential from the
// Authorization header or, for browser EventSource/WebSocket clients
// that cannot set headers, from the token query parameter.
func bearerCredential(r *stdhttp.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

func clientIP(r *stdhttp.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
