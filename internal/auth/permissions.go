package auth

// Capability names a discrete action a role may be granted.
type Capability string

const (
	CapViewDashboard      Capability = "view_dashboard"
	CapViewMembers        Capability = "view_members"
	CapAddMembers         Capability = "add_members"
	CapEditMembers        Capability = "edit_members"
	CapDeleteMembers      Capability = "delete_members"
	CapViewFinances       Capability = "view_finances"
	CapAddTransactions    Capability = "add_transactions"
	CapEditTransactions   Capability = "edit_transactions"
	CapDeleteTransactions Capability = "delete_transactions"
	CapViewReports        Capability = "view_reports"
	CapGenerateReports    Capability = "generate_reports"
	CapManageUsers        Capability = "manage_users"
	CapSystemSettings     Capability = "system_settings"
)

// AllCapabilities lists every capability the system knows about.
var AllCapabilities = []Capability{
	CapViewDashboard,
	CapViewMembers,
	CapAddMembers,
	CapEditMembers,
	CapDeleteMembers,
	CapViewFinances,
	CapAddTransactions,
	CapEditTransactions,
	CapDeleteTransactions,
	CapViewReports,
	CapGenerateReports,
	CapManageUsers,
	CapSystemSettings,
}

// rolePermissions is the static role-to-capability matrix. Admin is
// granted everything, including capabilities added later, via the
// special-case in HasPermission.
var rolePermissions = map[Role][]Capability{
	RoleTreasurer: {
		CapViewDashboard,
		CapViewMembers,
		CapAddMembers,
		CapEditMembers,
		CapViewFinances,
		CapAddTransactions,
		CapEditTransactions,
		CapDeleteTransactions,
		CapViewReports,
		CapGenerateReports,
	},
	RoleSecretary: {
		CapViewDashboard,
		CapViewMembers,
		CapAddMembers,
		CapEditMembers,
		CapViewFinances,
		CapViewReports,
		CapGenerateReports,
	},
	RoleMember: {
		CapViewDashboard,
		CapViewMembers,
		CapViewFinances,
		CapViewReports,
	},
	RoleViewer: {
		CapViewDashboard,
		CapViewReports,
	},
}

// HasPermission reports whether the role grants the capability.
// Unknown roles and unknown capabilities yield false.
func HasPermission(role Role, cap Capability) bool {
	if role == RoleAdmin {
		for _, c := range AllCapabilities {
			if c == cap {
				return true
			}
		}
		return false
	}
	for _, c := range rolePermissions[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// PermissionsForRole returns the capability list granted to a role.
// The returned slice is a copy and safe to modify.
func PermissionsForRole(role Role) []Capability {
	var src []Capability
	if role == RoleAdmin {
		src = AllCapabilities
	} else {
		src = rolePermissions[role]
	}
	out := make([]Capability, len(src))
	copy(out, src)
	return out
}
