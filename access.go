package access

import (
	"context"
	"errors"
	"time"

	"github.com/rideops/access/logger"
)

// ============================================================================
// DOMAIN OBJECTS
// ============================================================================

// Document is a raw, schemaless record as stored in the document store.
type Document map[string]any

// PermissionSet maps resource name -> action name -> allowed.
type PermissionSet map[string]map[string]bool

// Clone returns a deep copy so callers can merge without aliasing the source.
func (p PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(p))
	for resource, actions := range p {
		m := make(map[string]bool, len(actions))
		for action, allowed := range actions {
			m[action] = allowed
		}
		out[resource] = m
	}
	return out
}

// Merge overlays stored permissions on top of p. Stored values win per
// resource+action; resources unknown to p are copied in whole.
func (p PermissionSet) Merge(stored PermissionSet) PermissionSet {
	out := p.Clone()
	for resource, actions := range stored {
		base, ok := out[resource]
		if !ok {
			base = make(map[string]bool, len(actions))
			out[resource] = base
		}
		for action, allowed := range actions {
			base[action] = allowed
		}
	}
	return out
}

// Status values carried by identities and role records.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Identity is the resolved, normalized representation of an actor.
// Permissions is always non-nil, possibly empty.
type Identity struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	RoleID      string        `json:"role_id"`
	DisplayName string        `json:"display_name"`
	Status      string        `json:"status"`
	Permissions PermissionSet `json:"permissions"`
	CreatedAt   time.Time     `json:"created_at"`
	LastLogin   *time.Time    `json:"last_login,omitempty"`
}

// RoleRecord is the authorization policy for a role, merged with the
// compiled-in defaults for that role.
type RoleRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Permissions PermissionSet `json:"permissions"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// AssertedClaims are externally verified attributes an HTTP layer may pass
// when the actor has no stored record. The caller owns verification.
type AssertedClaims struct {
	RoleID string `json:"role_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// DriverRecord is the primary entity of a composite profile. Raw holds the
// full normalized source document; the typed fields are the join keys and
// the handful of columns the dashboard reads everywhere.
type DriverRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	UserID    string   `json:"user_id"`
	VehicleID string   `json:"vehicle_id"`
	Status    string   `json:"status"`
	Raw       Document `json:"raw,omitempty"`
}

// VehicleRecord is the vehicle side of a driver join.
type VehicleRecord struct {
	ID     string   `json:"id"`
	Plate  string   `json:"plate"`
	Make   string   `json:"make"`
	Model  string   `json:"model"`
	Status string   `json:"status"`
	Raw    Document `json:"raw,omitempty"`
}

// CompositeProfile is a driver joined with its identity and vehicle.
// Identity and Vehicle are optional; a profile with missing joins is valid.
type CompositeProfile struct {
	ID          string         `json:"id"`
	Driver      *DriverRecord  `json:"driver"`
	Identity    *Identity      `json:"identity,omitempty"`
	Vehicle     *VehicleRecord `json:"vehicle,omitempty"`
	Permissions PermissionSet  `json:"permissions"`
}

// ============================================================================
// DOCUMENT STORE
// ============================================================================

// ErrNotFound reports that a document does not exist in a collection.
// Store implementations must wrap it so resolvers can tell "absent" from
// "store unavailable".
var ErrNotFound = errors.New("document not found")

// DocumentStore is the read-only document interface the core consumes.
// The core never issues writes through it.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
}

// Collections names the collections the core reads from.
type Collections struct {
	Users    string `json:"users" yaml:"users"`
	Admins   string `json:"admins" yaml:"admins"`
	Drivers  string `json:"drivers" yaml:"drivers"`
	Vehicles string `json:"vehicles" yaml:"vehicles"`
	Roles    string `json:"roles" yaml:"roles"`
}

// DefaultCollections returns the collection names used by the dashboard.
func DefaultCollections() Collections {
	return Collections{
		Users:    "users",
		Admins:   "admins",
		Drivers:  "drivers",
		Vehicles: "vehicles",
		Roles:    "roles",
	}
}

// ============================================================================
// CORE
// ============================================================================

// Core binds the resolvers over a single document store. It is the unit a
// request handler holds on to.
type Core struct {
	store       DocumentStore
	collections Collections
	cache       RoleCache
	logger      logger.Logger
	clock       func() time.Time

	roles      *RoleResolver
	identities *IdentityResolver
	profiles   *ProfileAggregator
}

// Option configures a Core before the resolvers are wired.
type Option func(*Core) error

// WithLogger installs a structured logger. Defaults to the null logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Core) error {
		c.logger = l
		return nil
	}
}

// WithRoleCache injects the role cache implementation. Defaults to an
// unbounded in-process map cache.
func WithRoleCache(cache RoleCache) Option {
	return func(c *Core) error {
		c.cache = cache
		return nil
	}
}

// WithCollections overrides the collection names.
func WithCollections(cols Collections) Option {
	return func(c *Core) error {
		c.collections = cols
		return nil
	}
}

// WithClock overrides the time source used when a stored timestamp is
// absent. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(c *Core) error {
		c.clock = now
		return nil
	}
}

// New wires a Core over the given store.
func New(store DocumentStore, opts ...Option) (*Core, error) {
	c := &Core{
		store:       store,
		collections: DefaultCollections(),
		logger:      logger.NewNullLogger(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.cache == nil {
		c.cache = NewMapRoleCache()
	}
	c.roles = &RoleResolver{
		store:      store,
		collection: c.collections.Roles,
		cache:      c.cache,
		defaults:   DefaultRolePermissions(),
		logger:     c.logger,
		clock:      c.clock,
	}
	c.identities = &IdentityResolver{
		store:       store,
		collections: c.collections,
		roles:       c.roles,
		logger:      c.logger,
		clock:       c.clock,
	}
	c.profiles = &ProfileAggregator{
		store:       store,
		collections: c.collections,
		identities:  c.identities,
		logger:      c.logger,
	}
	return c, nil
}

// Roles exposes the role resolver.
func (c *Core) Roles() *RoleResolver { return c.roles }

// Identities exposes the identity resolver.
func (c *Core) Identities() *IdentityResolver { return c.identities }

// Profiles exposes the profile aggregator.
func (c *Core) Profiles() *ProfileAggregator { return c.profiles }

// ResolveRole resolves a role's merged permission record. A nil result is
// the explicit "unresolved role" signal, not an error.
func (c *Core) ResolveRole(ctx context.Context, roleID string) *RoleRecord {
	return c.roles.Resolve(ctx, roleID)
}

// ResolveIdentity resolves an actor through the ordered fallback chain.
// A nil result means "actor unknown".
func (c *Core) ResolveIdentity(ctx context.Context, actorID string, claims *AssertedClaims) *Identity {
	return c.identities.Resolve(ctx, actorID, claims)
}

// ListProfiles returns composite driver profiles, falling back to the
// synthetic fixture when the driver collection is structurally empty.
func (c *Core) ListProfiles(ctx context.Context) []*CompositeProfile {
	return c.profiles.ListProfiles(ctx)
}

// GetProfile aggregates a single driver profile, nil when unknown.
func (c *Core) GetProfile(ctx context.Context, id string) *CompositeProfile {
	return c.profiles.GetProfile(ctx, id)
}

// Allow answers the default-deny permission question for an identity.
func (c *Core) Allow(identity *Identity, resource, action string) bool {
	return Allow(identity, resource, action)
}

// InvalidateRole drops a role from the cache so the next resolution re-reads
// the store. Role edits elsewhere in the system must call this explicitly.
func (c *Core) InvalidateRole(roleID string) {
	c.roles.Invalidate(roleID)
}
