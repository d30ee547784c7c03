// Copyright (c) 2026 Visibles. All rights reserved.
// Author: dev@visibles.org

package sec

// # User Roles

// UserRole represents the authorization level granted to an identity.
type UserRole string

const (
	// Unrestricted access: manage profiles, identities, and destructive operations
	RoleAdmin UserRole = "admin"

	// Field staff: create and edit profiles, run the guided intake
	RoleSocialWorker UserRole = "social_worker"

	// Default role for self-registered accounts, read-only beyond the public surface
	RoleViewer UserRole = "viewer"
)

// IsValid reports whether r is a recognised [UserRole] value.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSocialWorker, RoleViewer:
		return true
	}
	return false
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleSocialWorker:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}
