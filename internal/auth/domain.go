package auth

import "time"

// Account represents a user account with credentials.
type Account struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string
	FirstName          string
	LastName           string
	Enabled            bool
	LanguagePreference string
	Roles              []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewAccount carries the fields needed to register an account.
type NewAccount struct {
	Username           string
	Email              string
	Password           string
	FirstName          string
	LastName           string
	LanguagePreference string
}

// Session binds an issued token to the account snapshot it represents.
type Session struct {
	Token     string
	TokenID   string
	Type      string
	ExpiresAt time.Time
	Account   *Account
}
