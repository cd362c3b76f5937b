package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leafcart/nursery-backend/pkg/config"
	"github.com/leafcart/nursery-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "leafcart-auth"}
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, 30*time.Minute, AccessTokenPayload{
		UserID: userID,
		Role:   enums.RoleCustomer,
		Email:  "asha@example.in",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.RoleCustomer {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be generated")
	}
}

func TestParseAccessTokenRejectsWrongSecretAndIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "leafcart-auth"}
	token, err := MintAccessToken(cfg, time.Now(), time.Minute, AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseAccessToken(config.JWTConfig{Secret: "other", Issuer: cfg.Issuer}, token); err == nil {
		t.Fatal("expected signature error")
	}
	if _, err := ParseAccessToken(config.JWTConfig{Secret: cfg.Secret, Issuer: "someone-else"}, token); err == nil {
		t.Fatal("expected issuer error")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "leafcart-auth"}
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), time.Minute, AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleCustomer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	_, err = ParseAccessToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestMintAccessTokenValidatesInput(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "leafcart-auth"}
	if _, err := MintAccessToken(cfg, time.Now(), 0, AccessTokenPayload{Role: enums.RoleCustomer}); err == nil {
		t.Fatal("expected ttl error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), time.Minute, AccessTokenPayload{Role: "owner"}); err == nil {
		t.Fatal("expected role error")
	}
	if _, err := MintAccessToken(config.JWTConfig{}, time.Now(), time.Minute, AccessTokenPayload{Role: enums.RoleCustomer}); err == nil {
		t.Fatal("expected secret error")
	}
}
