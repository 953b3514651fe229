package access

import "strings"

// Dashboard resources covered by the compiled-in permission tables.
const (
	ResourceRides     = "rides"
	ResourceDrivers   = "drivers"
	ResourceRiders    = "riders"
	ResourceOperators = "operators"
	ResourceRewards   = "rewards"
	ResourceFinance   = "finance"
	ResourceUsers     = "users"
	ResourceRoles     = "roles"
	ResourceVehicles  = "vehicles"
	ResourceReports   = "reports"
	ResourceSettings  = "settings"
)

// Actions used across the tables.
const (
	ActionView    = "view"
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionExport  = "export"
	ActionApprove = "approve"
)

func allActions(allowed bool) map[string]bool {
	return map[string]bool{
		ActionView:    allowed,
		ActionCreate:  allowed,
		ActionEdit:    allowed,
		ActionDelete:  allowed,
		ActionExport:  allowed,
		ActionApprove: allowed,
	}
}

func viewOnly() map[string]bool {
	return map[string]bool{ActionView: true}
}

// DefaultRolePermissions returns the compiled-in default permission table,
// keyed by lowercased role id. Stored role documents are merged on top of
// these; a partial stored role never erases a default resource entry.
func DefaultRolePermissions() map[string]PermissionSet {
	return map[string]PermissionSet{
		"super_admin": {
			ResourceRides:     allActions(true),
			ResourceDrivers:   allActions(true),
			ResourceRiders:    allActions(true),
			ResourceOperators: allActions(true),
			ResourceRewards:   allActions(true),
			ResourceFinance:   allActions(true),
			ResourceUsers:     allActions(true),
			ResourceRoles:     allActions(true),
			ResourceVehicles:  allActions(true),
			ResourceReports:   allActions(true),
			ResourceSettings:  allActions(true),
		},
		"admin": {
			ResourceRides:     allActions(true),
			ResourceDrivers:   allActions(true),
			ResourceRiders:    allActions(true),
			ResourceOperators: allActions(true),
			ResourceRewards:   allActions(true),
			ResourceFinance:   {ActionView: true, ActionExport: true},
			ResourceUsers:     {ActionView: true, ActionCreate: true, ActionEdit: true},
			ResourceRoles:     {ActionView: true},
			ResourceVehicles:  allActions(true),
			ResourceReports:   {ActionView: true, ActionExport: true},
			ResourceSettings:  {ActionView: true, ActionEdit: true},
		},
		"hr": {
			ResourceRides:     viewOnly(),
			ResourceDrivers:   {ActionView: true, ActionCreate: true, ActionEdit: true},
			ResourceRiders:    viewOnly(),
			ResourceOperators: {ActionView: true, ActionCreate: true, ActionEdit: true},
			ResourceRewards:   {},
			ResourceFinance:   {},
			ResourceUsers:     {ActionView: true, ActionCreate: true},
			ResourceRoles:     viewOnly(),
			ResourceVehicles:  viewOnly(),
			ResourceReports:   viewOnly(),
			ResourceSettings:  {},
		},
		"it_support": {
			ResourceRides:     viewOnly(),
			ResourceDrivers:   viewOnly(),
			ResourceRiders:    viewOnly(),
			ResourceOperators: viewOnly(),
			ResourceRewards:   {},
			ResourceFinance:   {},
			ResourceUsers:     {ActionView: true, ActionEdit: true},
			ResourceRoles:     viewOnly(),
			ResourceVehicles:  viewOnly(),
			ResourceReports:   viewOnly(),
			ResourceSettings:  {ActionView: true, ActionEdit: true},
		},
		"driver": {
			ResourceRides:     viewOnly(),
			ResourceDrivers:   {},
			ResourceRiders:    {},
			ResourceOperators: {},
			ResourceRewards:   viewOnly(),
			ResourceFinance:   {},
			ResourceUsers:     {},
			ResourceRoles:     {},
			ResourceVehicles:  viewOnly(),
			ResourceReports:   {},
			ResourceSettings:  {},
		},
		"rider": {
			ResourceRides:     {ActionView: true, ActionCreate: true},
			ResourceDrivers:   {},
			ResourceRiders:    {},
			ResourceOperators: {},
			ResourceRewards:   viewOnly(),
			ResourceFinance:   {},
			ResourceUsers:     {},
			ResourceRoles:     {},
			ResourceVehicles:  {},
			ResourceReports:   {},
			ResourceSettings:  {},
		},
		"finance": {
			ResourceRides:     viewOnly(),
			ResourceDrivers:   viewOnly(),
			ResourceRiders:    viewOnly(),
			ResourceOperators: viewOnly(),
			ResourceRewards:   {ActionView: true, ActionApprove: true},
			ResourceFinance:   {ActionView: true, ActionCreate: true, ActionEdit: true, ActionApprove: true, ActionExport: true},
			ResourceUsers:     {},
			ResourceRoles:     {},
			ResourceVehicles:  {},
			ResourceReports:   {ActionView: true, ActionExport: true},
			ResourceSettings:  {},
		},
	}
}

// defaultsFor looks up the compiled-in defaults for a role id. The id is
// lowercased and trimmed first; the literal "super admin" is additionally
// mapped onto the super_admin table to absorb a historical naming
// inconsistency in old role documents.
func defaultsFor(defaults map[string]PermissionSet, roleID string) (PermissionSet, bool) {
	norm := strings.ToLower(strings.TrimSpace(roleID))
	if ps, ok := defaults[norm]; ok {
		return ps, true
	}
	if norm == "super admin" {
		ps, ok := defaults["super_admin"]
		return ps, ok
	}
	return nil, false
}
