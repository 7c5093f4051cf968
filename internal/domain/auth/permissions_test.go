package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestUserRoleCannotReadReports(t *testing.T) {
	for _, perm := range RolePermissions[RoleUser] {
		if perm == PermReportsRead || perm == PermBanksWrite {
			t.Fatalf("user role must not hold %s", perm)
		}
	}
}

func TestUserRoleReadsOwnReports(t *testing.T) {
	for _, role := range []string{RoleUser, RoleAdmin} {
		found := false
		for _, perm := range RolePermissions[role] {
			if perm == PermReportsReadOwn {
				found = true
			}
		}
		if !found {
			t.Fatalf("role %s must hold %s", role, PermReportsReadOwn)
		}
	}
}
