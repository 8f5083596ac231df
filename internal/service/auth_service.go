package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// LoginOutcome is the three-way result of a directory login.
type LoginOutcome string

const (
	// OutcomeAuthenticated means the credentials matched.
	OutcomeAuthenticated LoginOutcome = "authenticated"
	// OutcomeNeedsPassword means the account exists but has no password yet;
	// the caller is routed to the set-password flow.
	OutcomeNeedsPassword LoginOutcome = "needs_password_set"
	// OutcomeRejected means the account is unknown or the password is wrong.
	OutcomeRejected LoginOutcome = "rejected"
)

// LoginResult carries the outcome plus, when authenticated, the principal
// and its bearer token.
type LoginResult struct {
	Outcome    LoginOutcome
	Client     *domain.ClientInfo
	Specialist *domain.Specialist
	Token      string
	ExpiresAt  time.Time
}

// AuthService coordinates the portal's login flows. Credential comparison
// sits behind auth.Verifier so the storage scheme can change without
// touching the outcomes.
type AuthService struct {
	clients     repository.ClientRepository
	specialists repository.SpecialistRepository
	verifier    auth.Verifier
	tokenMgr    *auth.TokenManager
	cfg         config.AuthConfig
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	ClientRepo     repository.ClientRepository
	SpecialistRepo repository.SpecialistRepository
	Verifier       auth.Verifier
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		clients:     deps.ClientRepo,
		specialists: deps.SpecialistRepo,
		verifier:    deps.Verifier,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:         cfg,
	}
}

// LoginClient authenticates a client by id.
func (s *AuthService) LoginClient(ctx context.Context, clientID, password string) (*LoginResult, error) {
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &LoginResult{Outcome: OutcomeRejected}, nil
		}
		return nil, apperrors.MapError(err)
	}
	if client.Password == nil {
		return &LoginResult{Outcome: OutcomeNeedsPassword, Client: client}, nil
	}
	if err := s.verifier.Verify(*client.Password, password); err != nil {
		return &LoginResult{Outcome: OutcomeRejected}, nil
	}

	token, exp, err := s.tokenMgr.GenerateToken(client.ID, domain.SubjectTypeClient)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Outcome: OutcomeAuthenticated, Client: client, Token: token, ExpiresAt: exp}, nil
}

// LoginSpecialist authenticates a specialist by username.
func (s *AuthService) LoginSpecialist(ctx context.Context, username, password string) (*LoginResult, error) {
	specialist, err := s.specialists.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &LoginResult{Outcome: OutcomeRejected}, nil
		}
		return nil, apperrors.MapError(err)
	}
	if specialist.Password == nil {
		return &LoginResult{Outcome: OutcomeNeedsPassword, Specialist: specialist}, nil
	}
	if err := s.verifier.Verify(*specialist.Password, password); err != nil {
		return &LoginResult{Outcome: OutcomeRejected}, nil
	}

	token, exp, err := s.tokenMgr.GenerateToken(specialist.ID, domain.SubjectTypeSpecialist)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Outcome: OutcomeAuthenticated, Specialist: specialist, Token: token, ExpiresAt: exp}, nil
}

// LoginFixed authenticates the admin, developer and owner principals, each
// a single configured credential pair.
func (s *AuthService) LoginFixed(subject domain.SubjectType, username, password string) (*LoginResult, error) {
	var wantUser, wantPass string
	switch subject {
	case domain.SubjectTypeAdmin:
		wantUser, wantPass = s.cfg.AdminUsername, s.cfg.AdminPassword
	case domain.SubjectTypeDeveloper:
		wantUser, wantPass = s.cfg.DevUsername, s.cfg.DevPassword
	case domain.SubjectTypeOwner:
		wantUser, wantPass = s.cfg.OwnerUsername, s.cfg.OwnerPassword
	default:
		return nil, apperrors.NewValidationError("unknown principal kind", nil)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPass)) == 1
	if !userOK || !passOK {
		return &LoginResult{Outcome: OutcomeRejected}, nil
	}

	token, exp, err := s.tokenMgr.GenerateToken(username, subject)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{Outcome: OutcomeAuthenticated, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
