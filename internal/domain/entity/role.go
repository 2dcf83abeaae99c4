package entity

import "strings"

// Role is a portal access role.
type Role string

// Portal roles, least to most privileged.
const (
	RoleStaff        Role = "staff"
	RoleFinanceAdmin Role = "finance_admin"
	RoleIT           Role = "it"
	RoleSuperAdmin   Role = "super_admin"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleStaff, RoleFinanceAdmin, RoleIT, RoleSuperAdmin}

// ParseRole normalizes a role tag. ok is false for tags outside the fixed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStaff, RoleFinanceAdmin, RoleIT, RoleSuperAdmin:
		return r, true
	}
	return "", false
}

// Label returns the human readable role name.
func (r Role) Label() string {
	switch r {
	case RoleStaff:
		return "Staff"
	case RoleFinanceAdmin:
		return "Finance Admin"
	case RoleIT:
		return "IT"
	case RoleSuperAdmin:
		return "Super Admin"
	}
	return string(r)
}
