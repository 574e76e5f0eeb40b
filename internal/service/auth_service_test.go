package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/config"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

func newTestAuthService(expiry time.Duration) *AuthService {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  expiry,
		BcryptCost: 4, // MinCost keeps hashing fast in tests
	}
	return NewAuthService(cfg, nil, nil, nil, zerolog.Nop())
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	user := &model.User{ID: 42, Email: "prof@example.com", Role: model.RoleProfessor}
	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "prof@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != RoleProfessor {
		t.Errorf("Role = %q, want professor", claims.Role)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTestAuthService(-time.Minute)

	token, err := svc.GenerateToken(&model.User{ID: 1, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	token, err := svc.GenerateToken(&model.User{ID: 1, Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "hunter22"); err != nil {
		t.Errorf("CheckPassword with correct password: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); err != ErrInvalidCredentials {
		t.Errorf("CheckPassword with wrong password = %v, want ErrInvalidCredentials", err)
	}
}
