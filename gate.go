package access

// Allow answers whether identity may perform action on resource.
// Default-deny: only an explicit true grants; a missing resource, missing
// action, or nil identity denies. Pure, no I/O.
func Allow(identity *Identity, resource, action string) bool {
	if identity == nil {
		return false
	}
	actions, ok := identity.Permissions[resource]
	if !ok {
		return false
	}
	return actions[action]
}
