package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/majorcompass-backend/internal/platform/apierr"
	"github.com/yungbote/majorcompass-backend/internal/platform/ctxutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, issuer string, sub string, exp time.Time) string {
	t.Helper()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionID: uuid.NewString(),
		Email:     "student@example.com",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newIdentity(t *testing.T, cache IdentityCache, issuer string) IdentityService {
	t.Helper()
	svc, err := NewIdentityService(logger.NewNop(), cache, IdentityConfig{JWTSecret: testSecret, Issuer: issuer, CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewIdentityService: %v", err)
	}
	return svc
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	status, got := apierr.From(err)
	if status != http.StatusUnauthorized || got != code {
		t.Fatalf("want 401/%s got %d/%s (%v)", code, status, got, err)
	}
}

func TestIdentitySetsRequestDataAndCaches(t *testing.T) {
	cache := NewMemoryIdentityCache()
	svc := newIdentity(t, cache, "")
	ownerID := uuid.New()
	token := signToken(t, testSecret, "", ownerID.String(), time.Now().Add(time.Hour))

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.OwnerID != ownerID || rd.Email != "student@example.com" || rd.SessionID == uuid.Nil {
		t.Fatalf("request data=%+v", rd)
	}
	if _, ok, _ := cache.Get(context.Background(), tokenKey(token)); !ok {
		t.Fatalf("identity was not cached")
	}
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	svc := newIdentity(t, nil, "https://id.example.com")
	ownerID := uuid.New().String()

	_, err := svc.SetContextFromToken(context.Background(), "")
	wantCode(t, err, "unauthorized")

	_, err = svc.SetContextFromToken(context.Background(), signToken(t, "other", "https://id.example.com", ownerID, time.Now().Add(time.Hour)))
	wantCode(t, err, "unauthorized")

	_, err = svc.SetContextFromToken(context.Background(), signToken(t, testSecret, "https://evil.example.com", ownerID, time.Now().Add(time.Hour)))
	wantCode(t, err, "unauthorized")

	_, err = svc.SetContextFromToken(context.Background(), signToken(t, testSecret, "https://id.example.com", "not-a-uuid", time.Now().Add(time.Hour)))
	wantCode(t, err, "unauthorized")

	_, err = svc.SetContextFromToken(context.Background(), signToken(t, testSecret, "https://id.example.com", ownerID, time.Now().Add(-time.Hour)))
	wantCode(t, err, "token_expired")
}

func TestIdentitySignOutRevokesToken(t *testing.T) {
	cache := NewMemoryIdentityCache()
	svc := newIdentity(t, cache, "")
	token := signToken(t, testSecret, "", uuid.NewString(), time.Now().Add(time.Hour))

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, ok, _ := cache.Get(context.Background(), tokenKey(token)); ok {
		t.Fatalf("identity still cached after sign-out")
	}
	_, err = svc.SetContextFromToken(context.Background(), token)
	wantCode(t, err, "token_revoked")

	other := signToken(t, testSecret, "", uuid.NewString(), time.Now().Add(time.Hour))
	if _, err := svc.SetContextFromToken(context.Background(), other); err != nil {
		t.Fatalf("other token rejected: %v", err)
	}
}

func TestMemoryIdentityCacheExpiry(t *testing.T) {
	c := NewMemoryIdentityCache().(*memoryIdentityCache)
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "k", &Identity{OwnerID: uuid.New()}, time.Minute)
	_ = c.Revoke(ctx, "r", time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit")
	}
	if revoked, _ := c.IsRevoked(ctx, "r"); !revoked {
		t.Fatalf("expected revoked")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expiry")
	}
	if revoked, _ := c.IsRevoked(ctx, "r"); revoked {
		t.Fatalf("revocation should lapse")
	}
}

func TestNewIdentityServiceRequiresSecret(t *testing.T) {
	if _, err := NewIdentityService(logger.NewNop(), nil, IdentityConfig{}); err == nil {
		t.Fatalf("expected error")
	}
}
