package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	// RoleViewer is the storefront customer.
	RoleViewer Role = "viewer"
	RoleSales  Role = "sales"
	RoleAdmin  Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleSales, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role may act on reservations it does not own.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSales
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Actor is the verified caller of an operation.
type Actor struct {
	Username string
	Role     Role
}

func NewActor(username string, role Role) Actor {
	return Actor{Username: username, Role: role}
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// CanAccess reports whether the actor may read or act on a record owned by owner.
func (a Actor) CanAccess(owner string) bool {
	return a.IsStaff() || (a.Username != "" && a.Username == owner)
}
