package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/config"
	"github.com/akudrin/livecast-server/internal/identity"
	"github.com/akudrin/livecast-server/internal/lifecycle"
	"github.com/akudrin/livecast-server/internal/mediaroom"
)

// NewServer builds the HTTP server binding both channels and the
// operator API to the engine.
func NewServer(
	cfg config.Config,
	hub *chat.Hub,
	presence *chat.Presence,
	publisher *lifecycle.Publisher,
	resolver *identity.Resolver,
	issuer mediaroom.TokenIssuer,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	wsHandler := NewWSHandler(hub, resolver, newRateLimiter(cfg.WSConnPerMinute), logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	sseHandler := NewSSEHandler(publisher, logger)
	router.GET("/events", sseHandler.Handle)

	admin := NewAdminHandlers(presence, publisher, issuer, logger)
	api := router.Group("/api", AdminMiddleware(cfg.AdminKeyHash, logger))
	api.GET("/stats", admin.Stats)
	api.POST("/broadcasts/:id/start", admin.StartBroadcast)
	api.POST("/broadcasts/:id/end", admin.EndBroadcast)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
