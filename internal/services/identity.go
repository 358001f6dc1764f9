package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/platform/apierr"
	"github.com/yungbote/majorcompass-backend/internal/platform/ctxutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

// Identity is the verified owner behind a bearer token.
type Identity struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	SessionID uuid.UUID `json:"session_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityCache holds verified identities keyed by a token digest. Revoked
// digests stay rejected until the token would have expired anyway.
type IdentityCache interface {
	Get(ctx context.Context, key string) (*Identity, bool, error)
	Set(ctx context.Context, key string, id *Identity, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

type IdentityService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	SignOut(ctx context.Context) error
}

type IdentityConfig struct {
	JWTSecret string
	Issuer    string
	CacheTTL  time.Duration
}

// identityClaims mirrors the tokens minted by the external identity service:
// sub is the owner uuid, sid the identity session.
type identityClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid,omitempty"`
	Email     string `json:"email,omitempty"`
}

type identityService struct {
	log    *logger.Logger
	cache  IdentityCache
	secret []byte
	parser *jwt.Parser
	ttl    time.Duration
	now    func() time.Time
}

func NewIdentityService(log *logger.Logger, cache IdentityCache, cfg IdentityConfig) (IdentityService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("missing IDENTITY_JWT_SECRET")
	}
	if cache == nil {
		cache = NewMemoryIdentityCache()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	return &identityService{
		log:    log.With("service", "IdentityService"),
		cache:  cache,
		secret: []byte(cfg.JWTSecret),
		parser: jwt.NewParser(opts...),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func tokenKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

func unauthorized(code string, err error) error {
	return apierr.New(http.StatusUnauthorized, code, err)
}

func (s *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, unauthorized("unauthorized", errors.New("missing token"))
	}
	key := tokenKey(tokenString)

	revoked, err := s.cache.IsRevoked(ctx, key)
	if err != nil {
		s.log.Warn("Identity cache revocation lookup failed", "error", err)
	}
	if revoked {
		return ctx, unauthorized("token_revoked", errors.New("token has been signed out"))
	}

	id, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("Identity cache lookup failed", "error", err)
	}
	if !ok || id == nil || !s.now().Before(id.ExpiresAt) {
		id, err = s.verify(tokenString)
		if err != nil {
			return ctx, err
		}
		ttl := s.ttl
		if remaining := id.ExpiresAt.Sub(s.now()); remaining < ttl {
			ttl = remaining
		}
		if ttl > 0 {
			if err := s.cache.Set(ctx, key, id, ttl); err != nil {
				s.log.Warn("Identity cache store failed", "error", err)
			}
		}
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		OwnerID:     id.OwnerID,
		SessionID:   id.SessionID,
		Email:       id.Email,
	}), nil
}

func (s *identityService) verify(tokenString string) (*Identity, error) {
	claims := &identityClaims{}
	parsed, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, unauthorized("token_expired", err)
		}
		return nil, unauthorized("unauthorized", fmt.Errorf("failed to parse token: %w", err))
	}
	if !parsed.Valid {
		return nil, unauthorized("unauthorized", errors.New("invalid token"))
	}
	ownerID, err := uuid.Parse(claims.Subject)
	if err != nil || ownerID == uuid.Nil {
		return nil, unauthorized("unauthorized", fmt.Errorf("invalid owner id in token"))
	}
	id := &Identity{OwnerID: ownerID, Email: claims.Email}
	if claims.SessionID != "" {
		if sid, err := uuid.Parse(claims.SessionID); err == nil {
			id.SessionID = sid
		}
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// SignOut drops the cached identity for the caller's token and rejects the
// token until it expires.
func (s *identityService) SignOut(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return unauthorized("unauthorized", errors.New("no request data found in context"))
	}
	key := tokenKey(rd.TokenString)

	ttl := s.ttl
	if id, ok, err := s.cache.Get(ctx, key); err == nil && ok && id != nil {
		ttl = id.ExpiresAt.Sub(s.now())
	} else if id, err := s.verify(rd.TokenString); err == nil {
		ttl = id.ExpiresAt.Sub(s.now())
	}

	if err := s.cache.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("invalidate identity: %w", err)
	}
	if ttl > 0 {
		if err := s.cache.Revoke(ctx, key, ttl); err != nil {
			return fmt.Errorf("revoke identity: %w", err)
		}
	}
	s.log.Info("Signed out", "owner_id", rd.OwnerID.String())
	return nil
}
