package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Claims represents JWT claims carried by a livecast bearer credential.
type Claims struct {
	IdentityID  string `json:"identity_id"`
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Directory looks up the role for an identity in the external
// user/staff registry. The resolver only needs the role: everything
// else rides in the token claims.
type Directory interface {
	RoleOf(ctx context.Context, identityID string) (Role, error)
}

// Resolver turns an optional bearer credential into an Identity.
// It fails open: any credential it cannot verify resolves to a fresh
// anonymous identity instead of an error, because connecting and
// reading never require authentication. Rejecting a connection
// outright is a transport decision, never made here.
type Resolver struct {
	cfg       *JWTConfig
	directory Directory
	log       *zerolog.Logger
}

// NewResolver builds a resolver over the given directory port.
func NewResolver(cfg *JWTConfig, directory Directory, logger *zerolog.Logger) *Resolver {
	return &Resolver{cfg: cfg, directory: directory, log: logger}
}

// Anonymous returns a fresh anonymous identity. Each call yields a
// distinct ID so two unauthenticated tabs never collide in LikedBy sets.
func Anonymous() Identity {
	return Identity{
		ID:          "anon-" + uuid.NewString(),
		DisplayName: "Anonymous",
		Role:        RoleAnonymous,
	}
}

// Resolve maps a credential to an identity. Empty, malformed, expired
// or unverifiable credentials all resolve to Anonymous().
func (r *Resolver) Resolve(ctx context.Context, credential string) Identity {
	if credential == "" {
		return Anonymous()
	}

	claims, err := r.parse(credential)
	if err != nil {
		r.log.Debug().Err(err).Msg("credential rejected, resolving as anonymous")
		return Anonymous()
	}

	role := RoleUser
	if r.directory != nil {
		resolved, err := r.directory.RoleOf(ctx, claims.IdentityID)
		if err != nil {
			r.log.Warn().Err(err).Str("identity_id", claims.IdentityID).Msg("directory lookup failed, resolving as anonymous")
			return Anonymous()
		}
		role = resolved
	}

	name := claims.DisplayName
	if name == "" {
		name = claims.IdentityID
	}

	return Identity{
		ID:          claims.IdentityID,
		DisplayName: name,
		AvatarRef:   claims.AvatarRef,
		Role:        role,
	}
}

func (r *Resolver) parse(credential string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.IdentityID == "" {
		return nil, fmt.Errorf("token has no identity id")
	}

	if r.cfg.Issuer != "" && claims.Issuer != r.cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}

	if r.cfg.Audience != "" {
		validAudience := false
		for _, aud := range claims.Audience {
			if aud == r.cfg.Audience {
				validAudience = true
				break
			}
		}
		if !validAudience {
			return nil, fmt.Errorf("invalid audience")
		}
	}

	return claims, nil
}

// GenerateToken creates a signed credential for the given identity.
// Used by tests and by operators minting staff tokens out of band.
func GenerateToken(cfg *JWTConfig, identityID, displayName, avatarRef string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		IdentityID:  identityID,
		DisplayName: displayName,
		AvatarRef:   avatarRef,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}
