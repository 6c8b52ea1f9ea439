package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/config"
	"github.com/akudrin/livecast-server/internal/identity"
	"github.com/akudrin/livecast-server/internal/lifecycle"
	"github.com/akudrin/livecast-server/internal/mediaroom"
	"github.com/akudrin/livecast-server/internal/mediaroom/livekit"
	"github.com/akudrin/livecast-server/internal/store/memory"
	"github.com/akudrin/livecast-server/internal/store/sqlite"
	transporthttp "github.com/akudrin/livecast-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *chat.Hub
	ledger          chat.Ledger
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	ledger, err := newLedger(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}

	presence := chat.NewPresence()
	rooms := chat.NewRooms()
	orchestrator := chat.NewOrchestrator(ledger, presence, rooms, cfg.HistoryLimit, logger)
	hub := chat.NewHub(orchestrator, logger)

	publisher := lifecycle.NewPublisher(logger)

	resolver := identity.NewResolver(&identity.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}, nil, logger)

	issuer := newTokenIssuer(cfg, logger)

	server := transporthttp.NewServer(cfg, hub, presence, publisher, resolver, issuer, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		ledger:          ledger,
		log:             logger,
	}, nil
}

func newLedger(cfg config.Config, logger *zerolog.Logger) (chat.Ledger, error) {
	if cfg.DatabasePath == "" {
		logger.Info().Msg("using in-memory message ledger")
		return memory.New(), nil
	}
	ledger, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("sqlite message ledger initialized")
	return ledger, nil
}

func newTokenIssuer(cfg config.Config, logger *zerolog.Logger) mediaroom.TokenIssuer {
	if cfg.LiveKitAPIKey == "" || cfg.LiveKitAPISecret == "" {
		logger.Info().Msg("no livekit credentials, lifecycle payloads carry no media token")
		return mediaroom.NoopIssuer{}
	}
	return livekit.New(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the ledger and other resources.
func (a *App) cleanup() {
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close ledger")
		} else {
			a.log.Info().Msg("ledger closed")
		}
	}
}
