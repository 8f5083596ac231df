package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/store"
)

func newAuthForTest(t *testing.T) *AuthService {
	t.Helper()
	records := store.NewMemoryStore()
	clientRepo := repository.NewClientRepository(records)
	specialistRepo := repository.NewSpecialistRepository(records)
	verifier := auth.PlaintextVerifier{}

	directory := NewDirectoryService(DirectoryDependencies{
		ClientRepo:     clientRepo,
		SpecialistRepo: specialistRepo,
		Records:        records,
		Verifier:       verifier,
	}, zap.NewNop())
	if err := directory.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}

	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		AdminUsername:         "admin",
		AdminPassword:         "admin123",
		DevUsername:           "dev",
		DevPassword:           "devpass",
		OwnerUsername:         "dono",
		OwnerPassword:         "dono123",
	}
	return NewAuthService(cfg, AuthDependencies{
		ClientRepo:     clientRepo,
		SpecialistRepo: specialistRepo,
		Verifier:       verifier,
	})
}

func TestLoginClientOutcomes(t *testing.T) {
	svc := newAuthForTest(t)
	ctx := context.Background()

	result, err := svc.LoginClient(ctx, "cli_001", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected authenticated, got %s", result.Outcome)
	}
	if result.Token == "" || result.Client == nil {
		t.Fatalf("authenticated login must carry token and client")
	}

	result, err = svc.LoginClient(ctx, "cli_001", "errada")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeRejected {
		t.Fatalf("wrong password should be rejected, got %s", result.Outcome)
	}

	// cli_002 has never set a password.
	result, err = svc.LoginClient(ctx, "cli_002", "qualquer")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeNeedsPassword {
		t.Fatalf("expected needs_password_set, got %s", result.Outcome)
	}
	if result.Token != "" {
		t.Fatalf("needs-password outcome must not carry a token")
	}

	result, err = svc.LoginClient(ctx, "cli_999", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeRejected {
		t.Fatalf("unknown client should be rejected, got %s", result.Outcome)
	}
}

func TestLoginSpecialistOutcomes(t *testing.T) {
	svc := newAuthForTest(t)
	ctx := context.Background()

	result, err := svc.LoginSpecialist(ctx, "ana.c", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeAuthenticated || result.Specialist == nil {
		t.Fatalf("expected authenticated specialist, got %+v", result)
	}

	result, err = svc.LoginSpecialist(ctx, "bruno.f", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeNeedsPassword {
		t.Fatalf("bruno.f has no password yet, got %s", result.Outcome)
	}
}

func TestLoginFixedPrincipals(t *testing.T) {
	svc := newAuthForTest(t)

	cases := []struct {
		subject  domain.SubjectType
		username string
		password string
	}{
		{domain.SubjectTypeAdmin, "admin", "admin123"},
		{domain.SubjectTypeDeveloper, "dev", "devpass"},
		{domain.SubjectTypeOwner, "dono", "dono123"},
	}
	for _, tc := range cases {
		result, err := svc.LoginFixed(tc.subject, tc.username, tc.password)
		if err != nil {
			t.Fatalf("%s login: %v", tc.subject, err)
		}
		if result.Outcome != OutcomeAuthenticated || result.Token == "" {
			t.Fatalf("%s login should authenticate", tc.subject)
		}

		claims, err := svc.TokenManager().ParseToken(result.Token)
		if err != nil {
			t.Fatalf("parse %s token: %v", tc.subject, err)
		}
		if claims.Subject != tc.subject {
			t.Fatalf("token subject = %s, want %s", claims.Subject, tc.subject)
		}
	}

	result, err := svc.LoginFixed(domain.SubjectTypeAdmin, "admin", "errada")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Outcome != OutcomeRejected {
		t.Fatalf("wrong admin password should be rejected")
	}
}
