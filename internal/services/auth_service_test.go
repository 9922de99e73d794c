package services

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/unilink-hq/placement-service/internal/config"
	"github.com/unilink-hq/placement-service/internal/models"
)

func newTestAuthService(jwtConfig config.JWTConfig) *authService {
	return &authService{
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		jwtConfig: jwtConfig,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:        "test-secret-at-least-32-characters",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "placement-service",
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	service := newTestAuthService(testJWTConfig())
	user := &models.User{
		ID:    "user-1",
		Email: "dana@example.edu",
		Role:  models.RoleStudent,
	}

	pair, err := service.issueTokens(user)
	if err != nil {
		t.Fatalf("Failed to issue tokens: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Expected both tokens to be issued")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("Access and refresh tokens must differ")
	}

	claims, err := service.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("Failed to parse access token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", claims.UserID)
	}
	if claims.Email != "dana@example.edu" {
		t.Errorf("Expected email in claims, got %s", claims.Email)
	}
	if claims.Role != models.RoleStudent {
		t.Errorf("Expected student role, got %s", claims.Role)
	}
	if claims.ExpiresAt.Before(time.Now()) {
		t.Error("Expected a future expiry")
	}
}

func TestAuthService_ParseAccessTokenRejections(t *testing.T) {
	service := newTestAuthService(testJWTConfig())
	user := &models.User{ID: "user-1", Email: "dana@example.edu", Role: models.RoleStudent}

	pair, err := service.issueTokens(user)
	if err != nil {
		t.Fatalf("Failed to issue tokens: %v", err)
	}

	t.Run("refresh token is not an access token", func(t *testing.T) {
		if _, err := service.ParseAccessToken(pair.RefreshToken); err == nil {
			t.Fatal("Expected refresh tokens to be rejected on access paths")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := service.ParseAccessToken("not-a-token"); err == nil {
			t.Fatal("Expected malformed tokens to be rejected")
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := testJWTConfig()
		other.Secret = "another-secret-that-does-not-match"
		forged := newTestAuthService(other)

		forgedPair, err := forged.issueTokens(user)
		if err != nil {
			t.Fatalf("Failed to issue tokens: %v", err)
		}
		if _, err := service.ParseAccessToken(forgedPair.AccessToken); err == nil {
			t.Fatal("Expected tokens signed with another key to be rejected")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := testJWTConfig()
		expired.AccessExpiry = -time.Minute
		issuer := newTestAuthService(expired)

		expiredPair, err := issuer.issueTokens(user)
		if err != nil {
			t.Fatalf("Failed to issue tokens: %v", err)
		}
		if _, err := service.ParseAccessToken(expiredPair.AccessToken); err == nil {
			t.Fatal("Expected expired tokens to be rejected")
		}
	})
}
