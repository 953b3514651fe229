package access

import (
	"sync"

	"github.com/dgraph-io/ristretto"
)

// RoleCache holds resolved role records for the process lifetime. Entries
// are appended, never mutated in place; Delete is the explicit invalidation
// hook and the only way a role change becomes visible without a restart.
type RoleCache interface {
	Get(roleID string) (*RoleRecord, bool)
	Set(roleID string, rec *RoleRecord)
	Delete(roleID string)
}

// MapRoleCache is an unbounded cache over sync.Map. It is the default; the
// dashboard's role set is small and fixed.
type MapRoleCache struct {
	m sync.Map
}

func NewMapRoleCache() *MapRoleCache { return &MapRoleCache{} }

func (c *MapRoleCache) Get(roleID string) (*RoleRecord, bool) {
	v, ok := c.m.Load(roleID)
	if !ok {
		return nil, false
	}
	return v.(*RoleRecord), true
}

func (c *MapRoleCache) Set(roleID string, rec *RoleRecord) {
	c.m.Store(roleID, rec)
}

func (c *MapRoleCache) Delete(roleID string) {
	c.m.Delete(roleID)
}

// RistrettoRoleCache bounds the cache when role ids are caller-supplied
// strings (multi-tenant deployments), trading the map cache's unbounded
// growth for ristretto's admission policy.
type RistrettoRoleCache struct {
	c *ristretto.Cache
}

// NewRistrettoRoleCache builds a bounded cache. Zero values fall back to
// sizes suited to a few hundred distinct roles.
func NewRistrettoRoleCache(numCounters, maxCost, bufferItems int64) (*RistrettoRoleCache, error) {
	if numCounters <= 0 {
		numCounters = 10_000
	}
	if maxCost <= 0 {
		maxCost = 1_000
	}
	if bufferItems <= 0 {
		bufferItems = 64
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoRoleCache{c: c}, nil
}

func (r *RistrettoRoleCache) Get(roleID string) (*RoleRecord, bool) {
	v, ok := r.c.Get(roleID)
	if !ok {
		return nil, false
	}
	rec, ok := v.(*RoleRecord)
	return rec, ok
}

// Set waits for the write buffer to drain so a Set is visible to the Get
// that immediately follows it; resolution relies on that.
func (r *RistrettoRoleCache) Set(roleID string, rec *RoleRecord) {
	r.c.Set(roleID, rec, 1)
	r.c.Wait()
}

func (r *RistrettoRoleCache) Delete(roleID string) {
	r.c.Del(roleID)
}

// Close releases ristretto's internal goroutines.
func (r *RistrettoRoleCache) Close() {
	r.c.Close()
}
