package types

import (
	"fmt"
	"strings"
)

// Role is an authorization tier. The three roles form a total order
// (RoleUser < RoleAdmin < RoleSuper) and every permission comparison in
// the system goes through Rank/AtLeast rather than raw string checks.
type Role string

const (
	// RoleUser is the base tier: own logs and the dashboard only.
	RoleUser Role = "user"

	// RoleAdmin manages all logs and non-super users.
	RoleAdmin Role = "admin"

	// RoleSuper is the top tier with unrestricted management access.
	RoleSuper Role = "super"
)

// Roles lists every role from lowest to highest privilege.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuper}

// ParseRole normalizes and validates a role value.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuper:
		return RoleSuper, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// Rank returns the role's position in the privilege order. Unknown
// roles rank below RoleUser so a corrupted value never gains access.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuper:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether r meets or exceeds the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank()
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}
