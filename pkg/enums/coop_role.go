package enums

import "fmt"

// CoopRole is a farmer's role inside a cooperative (memberships.role_in_coop).
type CoopRole string

const (
	CoopRoleMember  CoopRole = "member"
	CoopRoleOfficer CoopRole = "officer"
)

var validCoopRoles = []CoopRole{
	CoopRoleMember,
	CoopRoleOfficer,
}

// String implements fmt.Stringer.
func (r CoopRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known CoopRole.
func (r CoopRole) IsValid() bool {
	for _, candidate := range validCoopRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCoopRole converts raw input into a CoopRole.
func ParseCoopRole(value string) (CoopRole, error) {
	for _, candidate := range validCoopRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coop role %q", value)
}
