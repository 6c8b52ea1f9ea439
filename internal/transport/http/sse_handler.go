package http

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/lifecycle"
)

// SSEHandler serves the one-way notification channel. No
// authentication: anyone may listen for broadcast lifecycle
// transitions. A new listener first receives a connected ack, then the
// active-broadcast snapshot replayed as started events, then live
// events. The publisher guarantees nothing slips between the two.
type SSEHandler struct {
	publisher *lifecycle.Publisher
	log       *zerolog.Logger
}

// NewSSEHandler builds the notification channel handler.
func NewSSEHandler(publisher *lifecycle.Publisher, logger *zerolog.Logger) *SSEHandler {
	return &SSEHandler{publisher: publisher, log: logger}
}

// Handle streams lifecycle events until the client goes away.
func (h *SSEHandler) Handle(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events, unsubscribe := h.publisher.Subscribe()
	defer unsubscribe()

	c.SSEvent("connected", gin.H{})
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), mustJSON(ev.Payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// mustJSON pre-renders the payload so SSE frames carry stable JSON
// rather than gin's fmt fallback for structs.
func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
