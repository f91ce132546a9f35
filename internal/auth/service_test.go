package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

type memoryAuthRepo struct {
	accounts map[string]*Account
	sessions map[string]time.Time
	nextID   int64
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{
		accounts: make(map[string]*Account),
		sessions: make(map[string]time.Time),
	}
}

func (r *memoryAuthRepo) addAccount(username, password string, enabled bool) *Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	r.nextID++
	account := &Account{
		ID:                 r.nextID,
		Username:           username,
		Email:              username + "@meridian.local",
		PasswordHash:       string(hash),
		Enabled:            enabled,
		LanguagePreference: "en",
		Roles:              []string{"ROLE_USER"},
	}
	r.accounts[username] = account
	return account
}

func (r *memoryAuthRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	account, ok := r.accounts[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *memoryAuthRepo) CreateAccount(ctx context.Context, account NewAccount, passwordHash, defaultRole string) (*Account, error) {
	if _, taken := r.accounts[account.Username]; taken {
		return nil, shared.ErrUsernameTaken
	}
	r.nextID++
	created := &Account{
		ID:                 r.nextID,
		Username:           account.Username,
		Email:              account.Email,
		PasswordHash:       passwordHash,
		FirstName:          account.FirstName,
		LastName:           account.LastName,
		Enabled:            true,
		LanguagePreference: account.LanguagePreference,
		Roles:              []string{defaultRole},
	}
	r.accounts[created.Username] = created
	return created, nil
}

func (r *memoryAuthRepo) RegisterSession(ctx context.Context, tokenID string, userID int64, expiresAt time.Time) error {
	r.sessions[tokenID] = expiresAt
	return nil
}

func (r *memoryAuthRepo) SessionActive(ctx context.Context, tokenID string) (bool, error) {
	expiresAt, ok := r.sessions[tokenID]
	return ok && expiresAt.After(time.Now()), nil
}

func (r *memoryAuthRepo) RevokeSession(ctx context.Context, tokenID string) error {
	delete(r.sessions, tokenID)
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Hour))
}

func TestLoginIssuesSession(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addAccount("maria", "s3cret", true)
	svc := newTestService(repo)

	session, err := svc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)
	require.Equal(t, TokenType, session.Type)
	require.NotEmpty(t, session.Token)
	require.Contains(t, repo.sessions, session.TokenID)
	require.Equal(t, "maria", session.Account.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addAccount("maria", "s3cret", true)
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "maria", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(newMemoryAuthRepo())

	_, err := svc.Login(context.Background(), "ghost", "s3cret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

type failingAuthRepo struct {
	*memoryAuthRepo
	findErr error
}

func (r *failingAuthRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return nil, r.findErr
}

func TestLoginRepositoryFailureIsNotCredentialError(t *testing.T) {
	repoErr := errors.New("connection reset")
	svc := newTestService(&failingAuthRepo{memoryAuthRepo: newMemoryAuthRepo(), findErr: repoErr})

	_, err := svc.Login(context.Background(), "maria", "s3cret")
	require.ErrorIs(t, err, repoErr)
	require.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addAccount("maria", "s3cret", false)
	svc := newTestService(repo)

	_, err := svc.Login(context.Background(), "maria", "s3cret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterDefaultsLocaleAndRole(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := newTestService(repo)

	session, err := svc.Register(context.Background(), NewAccount{
		Username: "maria",
		Email:    "maria@meridian.local",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.Equal(t, shared.DefaultLocale, session.Account.LanguagePreference)
	require.Equal(t, []string{DefaultRole}, session.Account.Roles)
	require.Contains(t, repo.sessions, session.TokenID)
}

func TestRegisterRejectsUnsupportedLocale(t *testing.T) {
	svc := newTestService(newMemoryAuthRepo())

	_, err := svc.Register(context.Background(), NewAccount{
		Username:           "maria",
		Email:              "maria@meridian.local",
		Password:           "s3cret",
		LanguagePreference: "de",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addAccount("maria", "s3cret", true)
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), NewAccount{
		Username: "maria",
		Email:    "other@meridian.local",
		Password: "s3cret",
	})
	require.ErrorIs(t, err, shared.ErrUsernameTaken)
}

func TestVerifyTokenReturnsPrincipal(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addAccount("maria", "s3cret", true)
	svc := newTestService(repo)

	session, err := svc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)

	principal, err := svc.VerifyToken(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, session.Account.ID, principal.UserID)
	require.Equal(t, "maria", principal.Username)
	require.Equal(t, session.TokenID, principal.TokenID)
}

func TestVerifyTokenAfterRevocation(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.addAccount("maria", "s3cret", true)
	svc := newTestService(repo)

	session, err := svc.Login(context.Background(), "maria", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(context.Background(), session.TokenID))

	_, err = svc.VerifyToken(context.Background(), session.Token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
