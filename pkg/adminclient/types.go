package adminclient

import "time"

// Session mirrors the server's authentication response and is what the
// store persists between restarts.
type Session struct {
	Token              string   `json:"token"`
	Type               string   `json:"type"`
	ID                 int64    `json:"id"`
	Username           string   `json:"username"`
	Email              string   `json:"email"`
	FirstName          string   `json:"firstName,omitempty"`
	LastName           string   `json:"lastName,omitempty"`
	Roles              []string `json:"roles"`
	LanguagePreference string   `json:"languagePreference"`
}

// RoleSummary is the role shape embedded in user payloads.
type RoleSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SystemRole  bool   `json:"systemRole"`
	UserCount   int64  `json:"userCount"`
}

// User is the administrative view of an account.
type User struct {
	ID                 int64         `json:"id"`
	Username           string        `json:"username"`
	Email              string        `json:"email"`
	FirstName          string        `json:"firstName,omitempty"`
	LastName           string        `json:"lastName,omitempty"`
	Enabled            bool          `json:"enabled"`
	LanguagePreference string        `json:"languagePreference"`
	Roles              []RoleSummary `json:"roles"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Role is the full role resource with its server-derived user count.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SystemRole  bool      `json:"systemRole"`
	UserCount   int64     `json:"userCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Privilege is the full privilege resource with its server-derived role count.
type Privilege struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	RoleCount   int64     `json:"roleCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LoginRequest carries credentials for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest carries the signup payload for POST /auth/register.
type RegisterRequest struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	FirstName          string `json:"firstName,omitempty"`
	LastName           string `json:"lastName,omitempty"`
	LanguagePreference string `json:"languagePreference,omitempty"`
}

// CreateRoleRequest carries the payload for POST /roles.
type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateRoleRequest carries the payload for PUT /roles/{id}. The role name
// is not part of the payload; names are fixed after creation.
type UpdateRoleRequest struct {
	Description string `json:"description,omitempty"`
}

// CreatePrivilegeRequest carries the payload for POST /privileges.
type CreatePrivilegeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// UpdatePrivilegeRequest carries the payload for PUT /privileges/{id}.
// Privilege names are immutable, so only description and category appear.
type UpdatePrivilegeRequest struct {
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}
