package roles

import (
	"regexp"
	"time"
)

// NamePattern is the required shape of a role name.
var NamePattern = regexp.MustCompile(`^ROLE_[A-Z_]+$`)

// Role represents a named authorization grouping.
type Role struct {
	ID          int64
	Name        string
	Description string
	SystemRole  bool
	// UserCount is derived server-side: the number of users currently
	// holding this role. It gates delete eligibility.
	UserCount int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
