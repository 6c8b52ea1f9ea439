// Package mediaroom abstracts the external audio/video room service.
// The engine only ever enriches lifecycle payloads with an opaque join
// token; it never interprets the token or touches the media transport.
package mediaroom

import (
	"context"

	"github.com/akudrin/livecast-server/internal/identity"
)

// TokenIssuer mints join tokens for a media room.
type TokenIssuer interface {
	// Issue returns an opaque token granting identityID access to the
	// media room backing roomID, scoped by role.
	Issue(ctx context.Context, identityID, roomID string, role identity.Role) (string, error)
}

// NoopIssuer issues empty tokens. Used when no media backend is
// configured; lifecycle payloads then carry no MediaToken.
type NoopIssuer struct{}

func (NoopIssuer) Issue(context.Context, string, string, identity.Role) (string, error) {
	return "", nil
}

var _ TokenIssuer = NoopIssuer{}
