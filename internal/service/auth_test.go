package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"leadmonitor/internal/models"
)

func TestLogin_Success(t *testing.T) {
	svc, err := NewAuthService("admin", "hunter2", "test-secret", zap.NewNop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	token, expiry, err := svc.Login("admin", "hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(expiry); remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Fatalf("expiry %v not ~24h out", expiry)
	}

	// The token must verify against the service's own secret and carry
	// the operator username.
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return svc.JWTSecret(), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("token not valid")
	}
	if claims.Username != "admin" {
		t.Fatalf("claims username = %q", claims.Username)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, err := NewAuthService("admin", "hunter2", "test-secret", zap.NewNop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	if _, _, err := svc.Login("admin", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_WrongUsername(t *testing.T) {
	svc, err := NewAuthService("admin", "hunter2", "test-secret", zap.NewNop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	if _, _, err := svc.Login("root", "hunter2"); err != ErrInvalidCredentials {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestNewAuthService_RandomSecretFallback(t *testing.T) {
	svc, err := NewAuthService("admin", "hunter2", "", zap.NewNop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	if len(svc.JWTSecret()) != 32 {
		t.Fatalf("random secret length = %d, want 32", len(svc.JWTSecret()))
	}

	token, _, err := svc.Login("admin", "hunter2")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := jwt.ParseWithClaims(token, &models.Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return svc.JWTSecret(), nil
	}); err != nil {
		t.Fatalf("token does not verify against fallback secret: %v", err)
	}
}
