package auth

// Role is the user's role in the revision workflow.
type Role = string

const (
	// RoleUser can browse articles and submit revisions.
	RoleUser Role = "user"
	// RoleApprover can additionally approve or reject revisions.
	RoleApprover Role = "approver"
	// RoleAdmin can additionally manage users and approval groups.
	RoleAdmin Role = "admin"
)

// Permission names a capability granted by role.
type Permission = string

const (
	PermViewArticles     Permission = "view_articles"
	PermSubmitRevisions  Permission = "submit_revisions"
	PermEditOwnRevisions Permission = "edit_own_revisions"
	PermApproveRevisions Permission = "approve_revisions"
	PermManageUsers      Permission = "manage_users"
	PermManageGroups     Permission = "manage_groups"
)

// permissionFloor maps each permission to the minimum role that holds it.
// Every permission and route check goes through rolePriority so there is a
// single ordering policy, not a hand-coded predicate per permission.
var permissionFloor = map[Permission]Role{
	PermViewArticles:     RoleUser,
	PermSubmitRevisions:  RoleUser,
	PermEditOwnRevisions: RoleUser,
	PermApproveRevisions: RoleApprover,
	PermManageUsers:      RoleAdmin,
	PermManageGroups:     RoleAdmin,
}

var rolePriority = map[Role]int{
	RoleUser:     0,
	RoleApprover: 1,
	RoleAdmin:    2,
}

// IsValidRole checks if the role is one of the predefined valid roles.
func IsValidRole(r Role) bool {
	_, ok := rolePriority[r]
	return ok
}

// ParseRole safely parses a string into a Role.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}

// RoleAtLeast checks if role meets the minimum required level. Unknown roles
// never satisfy any requirement.
func RoleAtLeast(role, minRole Role) bool {
	current, ok := rolePriority[role]
	if !ok {
		return false
	}
	min, ok := rolePriority[minRole]
	if !ok {
		return false
	}
	return current >= min
}

// RoleHasPermission checks a permission against the floor table.
func RoleHasPermission(role Role, perm Permission) bool {
	floor, ok := permissionFloor[perm]
	if !ok {
		return false
	}
	return RoleAtLeast(role, floor)
}

// AllRoles returns the predefined roles in hierarchical order.
func AllRoles() []Role {
	return []Role{RoleUser, RoleApprover, RoleAdmin}
}
