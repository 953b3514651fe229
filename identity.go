package access

import (
	"context"
	"errors"
	"time"

	"github.com/rideops/access/logger"
)

// RoleSource tags where a resolved identity's role id came from. The
// precedence between sources is the ordered roleExtractors list, not an
// implicit chain of nil checks.
type RoleSource int

const (
	// RoleFromID reads the current "roleId" field.
	RoleFromID RoleSource = iota
	// RoleFromLegacy reads the pre-migration "role" field.
	RoleFromLegacy
	// RoleDefaultRider is the baseline low-privilege fallback when a user
	// document carries no role at all.
	RoleDefaultRider
)

// BaselineRole is the role assumed for user documents without any role field.
const BaselineRole = "rider"

// LegacyAdminRole is assigned unconditionally to actors found in the legacy
// admins collection, which predates the role system.
const LegacyAdminRole = "admin"

type roleExtractor struct {
	source  RoleSource
	extract func(Document) (string, bool)
}

// roleExtractors is evaluated in order; the first hit wins.
var roleExtractors = []roleExtractor{
	{RoleFromID, func(doc Document) (string, bool) {
		s, ok := doc["roleId"].(string)
		return s, ok && s != ""
	}},
	{RoleFromLegacy, func(doc Document) (string, bool) {
		s, ok := doc["role"].(string)
		return s, ok && s != ""
	}},
	{RoleDefaultRider, func(Document) (string, bool) {
		return BaselineRole, true
	}},
}

// extractRole walks the ordered extractor list over a user document.
func extractRole(doc Document) (string, RoleSource) {
	for _, e := range roleExtractors {
		if id, ok := e.extract(doc); ok {
			return id, e.source
		}
	}
	return BaselineRole, RoleDefaultRider
}

// IdentityResolver resolves an opaque actor id to a canonical Identity by
// walking an ordered list of sources: the users collection, the legacy
// admins collection, then caller-asserted claims. A nil result means
// "actor unknown" and is a legitimate outcome, not a failure.
type IdentityResolver struct {
	store       DocumentStore
	collections Collections
	roles       *RoleResolver
	logger      logger.Logger
	clock       func() time.Time
}

// Resolve runs the fallback chain for actorID. claims may be nil; when
// supplied, the caller is responsible for having verified them.
func (r *IdentityResolver) Resolve(ctx context.Context, actorID string, claims *AssertedClaims) *Identity {
	if actorID == "" {
		return nil
	}

	if doc := r.lookup(ctx, r.collections.Users, actorID); doc != nil {
		roleID, source := extractRole(doc)
		r.logger.Debug("identity resolved from users", "actor", actorID, "role", roleID, "source", int(source))
		return r.build(ctx, actorID, roleID, doc)
	}

	if doc := r.lookup(ctx, r.collections.Admins, actorID); doc != nil {
		// Legacy admins carry no trustworthy role field; force admin.
		r.logger.Debug("identity resolved from legacy admins", "actor", actorID)
		return r.build(ctx, actorID, LegacyAdminRole, doc)
	}

	if claims != nil && claims.RoleID != "" {
		r.logger.Debug("identity synthesized from asserted claims", "actor", actorID, "role", claims.RoleID)
		return r.build(ctx, actorID, claims.RoleID, Document{
			"email":       claims.Email,
			"displayName": claims.Name,
		})
	}

	return nil
}

// lookup treats store errors the same as absence so the chain can continue;
// the error is logged, never surfaced.
func (r *IdentityResolver) lookup(ctx context.Context, collection, id string) Document {
	doc, err := r.store.Get(ctx, collection, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Error("identity lookup failed", "collection", collection, "actor", id, "error", err.Error())
		}
		return nil
	}
	return doc
}

// build constructs the Identity from a source document and attaches the
// role's permissions. An unresolved role weakens the grant to an empty set
// instead of failing resolution.
func (r *IdentityResolver) build(ctx context.Context, actorID, roleID string, doc Document) *Identity {
	ident := &Identity{
		ID:          actorID,
		Email:       stringField(doc, "email"),
		RoleID:      roleID,
		DisplayName: displayName(doc),
		Status:      identityStatus(doc),
		Permissions: PermissionSet{},
	}

	if t, ok := NormalizeInstant(doc["createdAt"]); ok {
		ident.CreatedAt = t
	} else {
		ident.CreatedAt = r.clock()
	}
	if t, ok := NormalizeInstant(doc["lastLogin"]); ok {
		ident.LastLogin = &t
	}

	if rec := r.roles.Resolve(ctx, roleID); rec != nil {
		ident.Permissions = rec.Permissions.Clone()
	}
	return ident
}

func displayName(doc Document) string {
	if s := stringField(doc, "displayName"); s != "" {
		return s
	}
	return stringField(doc, "name")
}

func identityStatus(doc Document) string {
	switch s := stringField(doc, "status"); s {
	case StatusActive, StatusInactive, StatusSuspended:
		return s
	default:
		return StatusActive
	}
}
