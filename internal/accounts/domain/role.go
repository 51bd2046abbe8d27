package domain

import "fmt"

type Role string

const (
	RoleCustomer     Role = "customer"
	RoleStorageOwner Role = "storage_owner"
	RoleTruckDriver  Role = "truck_driver"
	RoleManager      Role = "manager"
	RoleAdmin        Role = "admin"
)

// Roles is the closed set of account roles.
var Roles = []Role{RoleCustomer, RoleStorageOwner, RoleTruckDriver, RoleManager, RoleAdmin}

// ParseRole validates s against the closed role set.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// SelfService reports whether the role may be chosen at signup. Managers
// arrive by invitation, admins by seeding or promotion.
func (r Role) SelfService() bool {
	return r == RoleCustomer || r == RoleStorageOwner || r == RoleTruckDriver
}
