package privileges

import (
	"regexp"
	"time"
)

// NamePattern is the required shape of a privilege name after upper-casing.
var NamePattern = regexp.MustCompile(`^[A-Z_]+$`)

// UncategorizedBucket labels privileges without a category when grouping.
// It is a display bucket, never persisted.
const UncategorizedBucket = "uncategorized"

// Privilege represents an atomic permission.
type Privilege struct {
	ID          int64
	Name        string
	Description string
	Category    string
	// RoleCount is derived server-side: the number of roles currently
	// containing this privilege. It gates delete eligibility.
	RoleCount int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
