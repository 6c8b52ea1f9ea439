package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/akudrin/livecast-server/internal/chat"
	"github.com/akudrin/livecast-server/internal/config"
	"github.com/akudrin/livecast-server/internal/identity"
	"github.com/akudrin/livecast-server/internal/lifecycle"
	"github.com/akudrin/livecast-server/internal/mediaroom"
	"github.com/akudrin/livecast-server/internal/store/memory"
)

const testAdminKey = "letmein"

type testEnv struct {
	ts        *httptest.Server
	publisher *lifecycle.Publisher
	presence  *chat.Presence
	jwt       *identity.JWTConfig
}

func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.Nop()

	jwtCfg := &identity.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "livecast",
		Audience: "livecast-clients",
	}
	resolver := identity.NewResolver(jwtCfg, staticRoles{}, &logger)

	presence := chat.NewPresence()
	rooms := chat.NewRooms()
	orchestrator := chat.NewOrchestrator(memory.New(), presence, rooms, 0, &logger)
	hub := chat.NewHub(orchestrator, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	publisher := lifecycle.NewPublisher(&logger)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.AdminKeyHash = string(hash)

	server := NewServer(cfg, hub, presence, publisher, resolver, mediaroom.NoopIssuer{}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, publisher: publisher, presence: presence, jwt: jwtCfg}
}

// staticRoles hands moderator rights to ids with a staff- prefix so
// transport tests can mint privileged tokens without a directory.
type staticRoles struct{}

func (staticRoles) RoleOf(_ context.Context, identityID string) (identity.Role, error) {
	if len(identityID) > 6 && identityID[:6] == "staff-" {
		return identity.RoleModerator, nil
	}
	return identity.RoleUser, nil
}
