package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/identity"
	"github.com/akudrin/livecast-server/internal/lifecycle"
	"github.com/akudrin/livecast-server/internal/mediaroom"
)

// AdminHandlers provides the operator surface: read-only statistics
// and the broadcast lifecycle triggers. Authorization happens in
// AdminMiddleware, never here.
type AdminHandlers struct {
	presence  *chat.Presence
	publisher *lifecycle.Publisher
	issuer    mediaroom.TokenIssuer
	log       *zerolog.Logger
}

// NewAdminHandlers creates the operator handlers.
func NewAdminHandlers(presence *chat.Presence, publisher *lifecycle.Publisher, issuer mediaroom.TokenIssuer, logger *zerolog.Logger) *AdminHandlers {
	return &AdminHandlers{
		presence:  presence,
		publisher: publisher,
		issuer:    issuer,
		log:       logger,
	}
}

// StatsResponse is the read-only statistics payload.
type StatsResponse struct {
	ActiveClientCount int                 `json:"activeClientCount"`
	ActiveBroadcasts  []lifecycle.Payload `json:"activeBroadcasts"`
}

// Stats returns the connection count and active broadcasts.
// GET /api/stats
func (h *AdminHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		ActiveClientCount: h.presence.Count(),
		ActiveBroadcasts:  h.publisher.SnapshotForNewClient(),
	})
}

// StartBroadcastRequest describes a broadcast going live.
type StartBroadcastRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	StreamRef    string `json:"streamRef"`
	MediaRoomRef string `json:"mediaRoomRef"`
}

// StartBroadcast marks a broadcast live and fans the transition out to
// every notification listener. Restarting a live broadcast republishes
// its payload. POST /api/broadcasts/:id/start
func (h *AdminHandlers) StartBroadcast(c *gin.Context) {
	broadcastID := c.Param("id")

	var req StartBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid start broadcast request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payload := lifecycle.Payload{
		Title:        req.Title,
		Description:  req.Description,
		StreamRef:    req.StreamRef,
		MediaRoomRef: req.MediaRoomRef,
	}

	if req.MediaRoomRef != "" {
		// The announce payload is shared by all listeners, so the
		// token is a subscribe-only audience grant.
		token, err := h.issuer.Issue(c.Request.Context(), "audience", req.MediaRoomRef, identity.RoleAnonymous)
		if err != nil {
			h.log.Error().Err(err).Str("broadcast_id", broadcastID).Msg("media token issue failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}
		payload.MediaToken = token
	}

	h.publisher.Started(broadcastID, payload)
	c.JSON(http.StatusOK, gin.H{"broadcastId": broadcastID, "status": lifecycle.StatusLive})
}

// EndBroadcast removes the broadcast and notifies listeners. Ending a
// broadcast that is not live is a no-op on state but still announces.
// POST /api/broadcasts/:id/end
func (h *AdminHandlers) EndBroadcast(c *gin.Context) {
	broadcastID := c.Param("id")
	h.publisher.Ended(broadcastID)
	c.JSON(http.StatusOK, gin.H{"broadcastId": broadcastID, "status": lifecycle.StatusEnded})
}
