// Package livekit implements the media room token port with LiveKit
// access tokens.
package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/akudrin/livecast-server/internal/identity"
	"github.com/akudrin/livecast-server/internal/mediaroom"
)

// Issuer mints LiveKit join tokens. LiveKit creates rooms on demand
// when the first participant joins, so issuing a token is all the
// provisioning a broadcast needs.
type Issuer struct {
	apiKey    string
	apiSecret string
	tokenTTL  time.Duration
}

// New creates an Issuer for the given API credentials.
func New(apiKey, apiSecret string) *Issuer {
	return &Issuer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		tokenTTL:  time.Hour,
	}
}

// Issue generates a join token for the media room backing roomID.
// Hosts may publish; everyone else subscribes only.
func (i *Issuer) Issue(_ context.Context, identityID, roomID string, role identity.Role) (string, error) {
	canPublish := role == identity.RoleHost
	grant := &auth.VideoGrant{
		RoomJoin:     true,
		Room:         roomID,
		CanPublish:   &canPublish,
		CanSubscribe: boolPtr(true),
	}

	at := auth.NewAccessToken(i.apiKey, i.apiSecret)
	at.SetVideoGrant(grant).
		SetIdentity(identityID).
		SetValidFor(i.tokenTTL)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("generate media token: %w", err)
	}
	return token, nil
}

func boolPtr(b bool) *bool { return &b }

var _ mediaroom.TokenIssuer = (*Issuer)(nil)
