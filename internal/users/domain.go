package users

import (
	"time"

	"github.com/meridian-crm/meridian-crm/internal/roles"
)

// User represents a user account for management. Users always hold at
// least one role; reassignment replaces the set, it never empties it.
type User struct {
	ID                 int64
	Username           string
	Email              string
	FirstName          string
	LastName           string
	Enabled            bool
	LanguagePreference string
	Roles              []roles.Role
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
