package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// TokenType is the token scheme marker returned with every session.
const TokenType = "Bearer"

// Claims is the JWT claim set carried by issued tokens.
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a new token for the account. Returns the compact token,
// its ID and expiry so the session registry can track it.
func (tm *TokenManager) Issue(account *Account) (token, tokenID string, expiresAt time.Time, err error) {
	now := tm.now().UTC()
	expiresAt = now.Add(tm.ttl)
	tokenID = uuid.NewString()
	claims := Claims{
		Username: account.Username,
		Roles:    account.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   fmt.Sprintf("%d", account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return token, tokenID, expiresAt, nil
}

// Verify parses the compact token and returns its claims. Any parse or
// signature failure surfaces as invalid credentials.
func (tm *TokenManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil || !parsed.Valid {
		return nil, shared.ErrInvalidCredentials
	}
	return claims, nil
}
