package access

import (
	"context"
	"errors"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rideops/access/logger"
)

// RoleResolver loads a role's merged permission record. Resolve never
// returns an error: the worst outcome is the explicit nil "unresolved"
// signal when neither storage nor the compiled-in defaults know the id.
type RoleResolver struct {
	store      DocumentStore
	collection string
	cache      RoleCache
	defaults   map[string]PermissionSet
	logger     logger.Logger
	clock      func() time.Time
}

// Resolve returns the role record for roleID, or nil when the role is
// unknown to both storage and the defaults. Results are cached for the
// process lifetime; see Invalidate.
func (r *RoleResolver) Resolve(ctx context.Context, roleID string) *RoleRecord {
	if roleID == "" {
		return nil
	}
	if rec, ok := r.cache.Get(roleID); ok {
		return rec
	}

	doc, err := r.fetch(ctx, roleID)
	if err != nil {
		// Store unavailable: serve defaults if we have them, never the error.
		r.logger.Error("role fetch failed, falling back to defaults", "role", roleID, "error", err.Error())
		rec := r.synthesize(roleID)
		if rec != nil {
			r.cache.Set(roleID, rec)
		}
		return rec
	}

	var rec *RoleRecord
	if doc != nil {
		rec = r.fromDocument(roleID, doc)
	} else {
		rec = r.synthesize(roleID)
	}
	if rec != nil {
		r.cache.Set(roleID, rec)
	}
	return rec
}

// Invalidate drops a cached role so the next Resolve re-reads the store.
func (r *RoleResolver) Invalidate(roleID string) {
	r.cache.Delete(roleID)
}

// fetch looks the role up by the exact id, then retries once with the first
// letter capitalized. Legacy role documents were keyed with inconsistent
// casing; the capitalized retry is the only transform attempted.
func (r *RoleResolver) fetch(ctx context.Context, roleID string) (Document, error) {
	doc, err := r.store.Get(ctx, r.collection, roleID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if alt := capitalizeFirst(roleID); alt != roleID {
		doc, err = r.store.Get(ctx, r.collection, alt)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// fromDocument merges a stored role document over the compiled-in defaults
// for its normalized id. Stored values win per resource+action; resources
// the stored document never mentions keep their default entries.
func (r *RoleResolver) fromDocument(roleID string, doc Document) *RoleRecord {
	defaults, hasDefaults := defaultsFor(r.defaults, roleID)

	var perms PermissionSet
	stored, storedOK := storedPermissions(doc["permissions"])
	switch {
	case !storedOK && hasDefaults:
		// Absent, null, or legacy array shape: nothing meaningful stored.
		perms = defaults.Clone()
	case !storedOK:
		perms = PermissionSet{}
	case hasDefaults:
		perms = defaults.Merge(stored)
	default:
		perms = stored
	}

	name := stringField(doc, "name")
	if name == "" {
		name = capitalizeFirst(roleID)
	}
	createdAt, ok := NormalizeInstant(doc["createdAt"])
	if !ok {
		createdAt = r.clock()
	}
	status := stringField(doc, "status")
	if status == "" {
		status = StatusActive
	}
	return &RoleRecord{
		ID:          roleID,
		Name:        name,
		Permissions: perms,
		Status:      status,
		CreatedAt:   createdAt,
	}
}

// synthesize builds a record purely from defaults, or returns the nil
// "unresolved" signal when the id has no default table either.
func (r *RoleResolver) synthesize(roleID string) *RoleRecord {
	defaults, ok := defaultsFor(r.defaults, roleID)
	if !ok {
		return nil
	}
	return &RoleRecord{
		ID:          roleID,
		Name:        capitalizeFirst(roleID),
		Permissions: defaults.Clone(),
		Status:      StatusActive,
		CreatedAt:   r.clock(),
	}
}

// storedPermissions extracts a usable permission map from a stored role
// document. Arrays are the legacy schema and carry no action grants; they
// report false just like absent or null values.
func storedPermissions(raw any) (PermissionSet, bool) {
	var m map[string]any
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []any:
		return nil, false
	case PermissionSet:
		return v.Clone(), true
	case Document:
		m = v
	case map[string]any:
		m = v
	default:
		return nil, false
	}
	out := make(PermissionSet, len(m))
	for resource, rawActions := range m {
		actions := make(map[string]bool)
		if am, ok := rawActions.(map[string]any); ok {
			for action, allowed := range am {
				if b, ok := allowed.(bool); ok {
					actions[action] = b
				}
			}
		}
		out[resource] = actions
	}
	return out, true
}

func stringField(doc Document, key string) string {
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

// capitalizeFirst upper-cases the first rune only; "admin" -> "Admin".
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
