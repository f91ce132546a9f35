package shared

import "errors"

// Domain error taxonomy. Handlers translate these into problem responses,
// the client SDK reconstructs the same taxonomy from status codes.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure or a bad/expired token.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation indicates malformed input rejected before persistence.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the principal lacks the required privilege.
	ErrForbidden = errors.New("forbidden")

	// ErrUsernameTaken occurs when registering with an existing username.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrEmailInUse occurs when registering with an existing email.
	ErrEmailInUse = errors.New("email is already in use")

	// ErrRoleExists occurs when creating a role whose name is taken.
	ErrRoleExists = errors.New("role name already exists")
	// ErrSystemRole occurs when deleting a built-in role.
	ErrSystemRole = errors.New("system roles cannot be deleted")
	// ErrRoleInUse occurs when deleting a role still assigned to users.
	ErrRoleInUse = errors.New("role is assigned to users and cannot be deleted")

	// ErrPrivilegeExists occurs when creating a privilege whose name is taken.
	ErrPrivilegeExists = errors.New("privilege name already exists")
	// ErrPrivilegeInUse occurs when deleting a privilege still held by roles.
	ErrPrivilegeInUse = errors.New("privilege is assigned to roles and cannot be deleted")

	// ErrSelfRoleChange occurs when a user tries to change their own role.
	ErrSelfRoleChange = errors.New("you cannot change your own role")

	// ErrCustomerEmailInUse occurs when creating or updating a customer with
	// an email another customer already holds.
	ErrCustomerEmailInUse = errors.New("a customer with this email already exists")
)

// IsConflict reports whether err belongs to the conflict family, the
// invariant violations that map to HTTP 409.
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrSystemRole, ErrRoleInUse, ErrPrivilegeInUse, ErrSelfRoleChange,
		ErrCustomerEmailInUse,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation reports whether err belongs to the validation family:
// malformed input and duplicate names/emails, mapped to HTTP 400.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrUsernameTaken, ErrEmailInUse,
		ErrRoleExists, ErrPrivilegeExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
