package auth

import (
	"testing"

	"github.com/spec-kit/support-portal/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 60)

	token, expiresAt, err := tm.GenerateToken("cli_001", domain.SubjectTypeClient)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("token and expiry must be set")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "cli_001" || claims.Subject != domain.SubjectTypeClient {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("spec_ana.c", domain.SubjectTypeSpecialist)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 60).ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}
