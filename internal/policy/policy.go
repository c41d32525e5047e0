package policy

import (
	"github.com/tjgf2022/logkeeper-roles-hub/types"
)

// Capability is a named action a role is allowed to perform. Handlers
// gate routes on capabilities; the presentation shell hides controls
// the viewer's capability set does not include.
type Capability string

const (
	CapViewDashboard Capability = "view-dashboard"
	CapViewOwnLogs   Capability = "view-own-logs"
	CapEditOwnLogs   Capability = "edit-own-logs"
	CapViewAllLogs   Capability = "view-all-logs"
	CapEditAnyLog    Capability = "edit-any-log"
	CapDeleteAnyLog  Capability = "delete-any-log"
	CapViewUsers     Capability = "view-users"
	CapEditUsers     Capability = "edit-users"
	CapAssignRoles   Capability = "assign-roles"
	CapDeleteUsers   Capability = "delete-users"
	CapManageSupers  Capability = "manage-supers"
	CapViewSettings  Capability = "view-settings"
)

// grants lists the capabilities each tier adds on top of the tier
// below it. Capabilities(role) accumulates the grants of every tier the
// role meets.
var grants = map[types.Role][]Capability{
	types.RoleUser: {
		CapViewDashboard,
		CapViewOwnLogs,
		CapEditOwnLogs,
	},
	types.RoleAdmin: {
		CapViewAllLogs,
		CapEditAnyLog,
		CapDeleteAnyLog,
		CapViewUsers,
		CapEditUsers,
	},
	types.RoleSuper: {
		CapAssignRoles,
		CapDeleteUsers,
		CapManageSupers,
		CapViewSettings,
	},
}

// Capabilities returns the full, ordered capability set for a role.
// Higher tiers are strict supersets of lower ones.
func Capabilities(role types.Role) []Capability {
	caps := make([]Capability, 0, 12)
	for _, tier := range types.Roles {
		if !role.AtLeast(tier) {
			break
		}
		caps = append(caps, grants[tier]...)
	}
	return caps
}

// Allows reports whether the role's capability set includes the
// capability. Unknown roles are allowed nothing.
func Allows(role types.Role, capability Capability) bool {
	for _, tier := range types.Roles {
		if !role.AtLeast(tier) {
			break
		}
		for _, granted := range grants[tier] {
			if granted == capability {
				return true
			}
		}
	}
	return false
}

// Destination is a reachable view in the presentation shell, with the
// minimum role required to reach it.
type Destination struct {
	Path    string     `json:"path"`
	Label   string     `json:"label"`
	MinRole types.Role `json:"min_role"`
}

// destinations is the static routing table. Adding a view means adding
// a row here with its minimum role.
var destinations = []Destination{
	{Path: "/dashboard", Label: "Dashboard", MinRole: types.RoleUser},
	{Path: "/logs", Label: "Work logs", MinRole: types.RoleUser},
	{Path: "/logs/new", Label: "New log", MinRole: types.RoleUser},
	{Path: "/logs/edit/:id", Label: "Edit log", MinRole: types.RoleUser},
	{Path: "/logs/view/:id", Label: "View log", MinRole: types.RoleUser},
	{Path: "/users", Label: "User management", MinRole: types.RoleAdmin},
	{Path: "/settings", Label: "System settings", MinRole: types.RoleSuper},
}

// Navigation returns the destinations reachable by the role, in table
// order.
func Navigation(role types.Role) []Destination {
	reachable := make([]Destination, 0, len(destinations))
	for _, dest := range destinations {
		if role.AtLeast(dest.MinRole) {
			reachable = append(reachable, dest)
		}
	}
	return reachable
}

// CanNavigate reports whether the role may reach the destination path.
// Unknown paths are unreachable for every role.
func CanNavigate(role types.Role, path string) bool {
	for _, dest := range destinations {
		if dest.Path == path {
			return role.AtLeast(dest.MinRole)
		}
	}
	return false
}

// CanViewLog is the ownership clause for log visibility: admins and
// supers see everything, everyone else only their own entries.
func CanViewLog(viewer types.Viewer, log types.WorkLog) bool {
	if viewer.Role.AtLeast(types.RoleAdmin) {
		return true
	}
	return log.AuthorID == viewer.UserID
}

// CanEditLog reports whether the viewer may modify the entry: any
// admin or super, or the entry's author.
func CanEditLog(viewer types.Viewer, log types.WorkLog) bool {
	if viewer.Role.AtLeast(types.RoleAdmin) {
		return true
	}
	return log.AuthorID == viewer.UserID
}

// CanDeleteLog reports whether the viewer may delete the entry.
// Deletion requires admin or super, and an admin may not delete a
// super's entry. The role-tier rule is applied here the same way it is
// on the users list.
func CanDeleteLog(viewer types.Viewer, log types.WorkLog) bool {
	if !viewer.Role.AtLeast(types.RoleAdmin) {
		return false
	}
	if log.AuthorRole == types.RoleSuper {
		return viewer.Role == types.RoleSuper
	}
	return true
}

// CanManageUser reports whether the viewer may see and edit the target
// account on the users view. Admins may not manage super accounts.
func CanManageUser(viewer types.Viewer, target types.User) bool {
	if !viewer.Role.AtLeast(types.RoleAdmin) {
		return false
	}
	if target.Role == types.RoleSuper {
		return viewer.Role == types.RoleSuper
	}
	return true
}

// CanDeleteUser reports whether the viewer may delete the target
// account. Only supers delete accounts, and the protected primordial
// account can never be deleted.
func CanDeleteUser(viewer types.Viewer, target types.User) bool {
	if target.Protected {
		return false
	}
	return viewer.Role == types.RoleSuper
}

// CanAssignRole reports whether the viewer may change the target
// account's role. Only supers assign roles, and the protected
// primordial account can never be reassigned.
func CanAssignRole(viewer types.Viewer, target types.User) bool {
	if target.Protected {
		return false
	}
	return viewer.Role == types.RoleSuper
}
