package access

import "testing"

func TestAllowDefaultDeny(t *testing.T) {
	ident := &Identity{
		ID:     "U1",
		RoleID: "admin",
		Permissions: PermissionSet{
			ResourceDrivers: {ActionView: true, ActionEdit: false},
		},
	}

	if !Allow(ident, ResourceDrivers, ActionView) {
		t.Fatalf("explicit true must allow")
	}
	if Allow(ident, ResourceDrivers, ActionEdit) {
		t.Fatalf("explicit false must deny")
	}
	if Allow(ident, ResourceDrivers, ActionDelete) {
		t.Fatalf("missing action key must deny")
	}
	if Allow(ident, ResourceFinance, ActionView) {
		t.Fatalf("missing resource key must deny")
	}
}

func TestAllowNilAndEmpty(t *testing.T) {
	if Allow(nil, ResourceRides, ActionView) {
		t.Fatalf("nil identity must deny")
	}
	if Allow(&Identity{Permissions: PermissionSet{}}, ResourceRides, ActionView) {
		t.Fatalf("empty permission set must deny")
	}
}
