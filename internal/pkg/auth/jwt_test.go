// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Storefront Backend"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(42, "user@example.com", true)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := mgr.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email to round-trip, got %s", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("expected admin flag to round-trip")
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateRefreshToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := mgr.ValidateAccessToken(token); err == nil {
		t.Error("expected refresh token to fail access validation")
	}
	if _, err := mgr.ValidateRefreshToken(token); err != nil {
		t.Errorf("expected refresh validation to pass, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testConfig())
	token, err := mgr.GenerateAccessToken(1, "user@example.com", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	other := NewJWTManager(otherCfg)

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	if got := ExtractTokenFromHeader("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Errorf("expected extracted token, got %q", got)
	}
	if got := ExtractTokenFromHeader("abc.def.ghi"); got != "" {
		t.Errorf("expected empty string without Bearer prefix, got %q", got)
	}
	if got := ExtractTokenFromHeader(""); got != "" {
		t.Errorf("expected empty string for empty header, got %q", got)
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	hash, err := mgr.HashPassword("Str0ngPass")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := mgr.VerifyPassword("Str0ngPass", hash); err != nil {
		t.Errorf("expected password to verify, got %v", err)
	}
	if err := mgr.VerifyPassword("WrongPass1", hash); err == nil {
		t.Error("expected wrong password to fail verification")
	}
}

func TestValidatePassword(t *testing.T) {
	mgr := NewPasswordManager(testConfig())

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ngPass", false},
		{"too short", "Ab1", true},
		{"no uppercase", "weakpass1", true},
		{"no lowercase", "WEAKPASS1", true},
		{"no number", "WeakPassword", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := mgr.ValidatePassword(tc.password)
			if tc.wantErr && err == nil {
				t.Errorf("expected error for %q", tc.password)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tc.password, err)
			}
		})
	}
}
