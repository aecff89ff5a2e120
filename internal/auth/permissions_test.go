package auth

import "testing"

func TestHasPermission_AdminHasEverything(t *testing.T) {
	for _, cap := range AllCapabilities {
		if !HasPermission(RoleAdmin, cap) {
			t.Errorf("HasPermission(admin, %s) = false, want true", cap)
		}
	}
}

func TestHasPermission_RoleMatrix(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleTreasurer, CapAddTransactions, true},
		{RoleTreasurer, CapDeleteTransactions, true},
		{RoleTreasurer, CapAddMembers, true},
		{RoleTreasurer, CapEditMembers, true},
		{RoleTreasurer, CapDeleteMembers, false},
		{RoleTreasurer, CapManageUsers, false},

		{RoleSecretary, CapAddMembers, true},
		{RoleSecretary, CapEditMembers, true},
		{RoleSecretary, CapDeleteMembers, false},
		{RoleSecretary, CapAddTransactions, false},
		{RoleSecretary, CapGenerateReports, true},

		{RoleMember, CapViewMembers, true},
		{RoleMember, CapViewFinances, true},
		{RoleMember, CapEditMembers, false},
		{RoleMember, CapGenerateReports, false},

		{RoleViewer, CapViewDashboard, true},
		{RoleViewer, CapViewReports, true},
		{RoleViewer, CapViewMembers, false},
		{RoleViewer, CapViewFinances, false},
	}

	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.cap); got != tt.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestHasPermission_UnknownRole(t *testing.T) {
	if HasPermission(Role("superuser"), CapViewDashboard) {
		t.Error("unknown role should have no permissions")
	}
}

func TestHasPermission_UnknownCapability(t *testing.T) {
	if HasPermission(RoleAdmin, Capability("launch_missiles")) {
		t.Error("unknown capability should be denied even for admin")
	}
	if HasPermission(RoleTreasurer, Capability("launch_missiles")) {
		t.Error("unknown capability should be denied")
	}
}

func TestPermissionsForRole_ReturnsCopy(t *testing.T) {
	perms := PermissionsForRole(RoleViewer)
	if len(perms) != 2 {
		t.Fatalf("len(perms) = %d, want 2", len(perms))
	}

	perms[0] = Capability("tampered")
	again := PermissionsForRole(RoleViewer)
	if again[0] == Capability("tampered") {
		t.Error("PermissionsForRole() exposed internal state")
	}
}

func TestPermissionsForRole_Admin(t *testing.T) {
	perms := PermissionsForRole(RoleAdmin)
	if len(perms) != len(AllCapabilities) {
		t.Errorf("len(admin perms) = %d, want %d", len(perms), len(AllCapabilities))
	}
}

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles {
		if !IsValidRole(r) {
			t.Errorf("IsValidRole(%s) = false", r)
		}
	}
	if IsValidRole(Role("pastor")) {
		t.Error("IsValidRole(pastor) = true, want false")
	}
}
