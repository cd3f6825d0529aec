package auth

import (
	"testing"
	"time"

	"github.com/VinoFleet/VinoFleet/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "vinofleet",
		Audience:  "vinofleet",
	}

	token, exp, err := GenerateAccessToken(cfg, "drv-1", []string{"driver"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "drv-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "driver" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}

	// 错误的 secret 必须验签失败
	bad := cfg
	bad.JWTSecret = "other"
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}

	// issuer 不匹配必须失败
	badIss := cfg
	badIss.Issuer = "someone-else"
	if _, err := ParseAccessToken(badIss, token); err == nil {
		t.Fatalf("expected parse failure with wrong issuer")
	}
}
