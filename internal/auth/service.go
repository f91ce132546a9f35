package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// DefaultRole is assigned to every newly registered account.
const DefaultRole = "ROLE_USER"

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates username/password credentials and issues a session.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		// Only an unknown username maps to a credential failure; a repository
		// outage must not masquerade as a 401.
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: find account: %w", err)
	}
	if !account.Enabled {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.issueSession(ctx, account)
}

// Register creates a new account with the default role and issues a session.
func (s *Service) Register(ctx context.Context, req NewAccount) (*Session, error) {
	if req.LanguagePreference == "" {
		req.LanguagePreference = shared.DefaultLocale
	}
	if !shared.IsSupportedLocale(req.LanguagePreference) {
		return nil, fmt.Errorf("%w: unsupported language preference %q", shared.ErrValidation, req.LanguagePreference)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	account, err := s.repo.CreateAccount(ctx, req, string(hash), DefaultRole)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, account)
}

// VerifyToken checks a bearer token against the signature and the session
// registry and returns the principal it represents.
func (s *Service) VerifyToken(ctx context.Context, token string) (*shared.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.SessionActive(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, shared.ErrInvalidCredentials
	}
	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return &shared.Principal{
		UserID:   userID,
		Username: claims.Username,
		Roles:    claims.Roles,
		TokenID:  claims.ID,
	}, nil
}

// RevokeToken removes a token from the session registry.
func (s *Service) RevokeToken(ctx context.Context, tokenID string) error {
	return s.repo.RevokeSession(ctx, tokenID)
}

func (s *Service) issueSession(ctx context.Context, account *Account) (*Session, error) {
	token, tokenID, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RegisterSession(ctx, tokenID, account.ID, expiresAt); err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		TokenID:   tokenID,
		Type:      TokenType,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}
