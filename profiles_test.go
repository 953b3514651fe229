package access

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func seedDriver(store *fakeStore, id string, doc Document) {
	doc["id"] = id
	store.put("drivers", id, doc)
}

func TestListProfilesSyntheticOnEmptyCollection(t *testing.T) {
	ctx := context.Background()
	core := newTestCore(t, newFakeStore())

	profiles := core.ListProfiles(ctx)
	if len(profiles) != 2 {
		t.Fatalf("empty driver collection must serve the 2-entry fixture, got %d", len(profiles))
	}
	if profiles[0].ID != "D001" || profiles[1].ID != "D002" {
		t.Fatalf("fixture ids mismatch: %s, %s", profiles[0].ID, profiles[1].ID)
	}
}

func TestListProfilesSyntheticOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.fail("drivers", errors.New("store unavailable"))
	core := newTestCore(t, store)

	profiles := core.ListProfiles(ctx)
	if len(profiles) != 2 {
		t.Fatalf("top-level fetch failure must serve the fixture, got %d profiles", len(profiles))
	}
}

func TestSyntheticFixtureIsIsolated(t *testing.T) {
	a := SyntheticProfiles()
	a[0].Permissions[ResourceRides][ActionDelete] = true
	b := SyntheticProfiles()
	if b[0].Permissions[ResourceRides][ActionDelete] {
		t.Fatalf("fixture must be rebuilt per call, not shared mutable state")
	}
}

func TestListProfilesJoins(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedDriver(store, "D100", Document{
		"name":      "Omar N",
		"userId":    "U100",
		"vehicleId": "V100",
	})
	store.put("users", "U100", Document{"roleId": "driver", "email": "omar@example.com"})
	store.put("vehicles", "V100", Document{"plate": "XYZ-123", "make": "Kia", "model": "Rio"})
	core := newTestCore(t, store)

	profiles := core.ListProfiles(ctx)
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	p := profiles[0]
	if p.Identity == nil || p.Identity.Email != "omar@example.com" {
		t.Fatalf("identity join missing: %+v", p.Identity)
	}
	if p.Vehicle == nil || p.Vehicle.Plate != "XYZ-123" {
		t.Fatalf("vehicle join missing: %+v", p.Vehicle)
	}
	if !reflect.DeepEqual(p.Permissions, DefaultRolePermissions()["driver"]) {
		t.Fatalf("permissions must ride along from the identity join")
	}
}

func TestProfileDanglingVehicleDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedDriver(store, "D200", Document{"userId": "U200", "vehicleId": "V-GONE"})
	seedDriver(store, "D201", Document{"userId": "U201", "vehicleId": "V201"})
	store.put("users", "U200", Document{"roleId": "driver"})
	store.put("users", "U201", Document{"roleId": "driver"})
	store.put("vehicles", "V201", Document{"plate": "OK-1"})
	core := newTestCore(t, store)

	profiles := core.ListProfiles(ctx)
	if len(profiles) != 2 {
		t.Fatalf("a dangling vehicle must not drop the record or its siblings, got %d", len(profiles))
	}
	byID := map[string]*CompositeProfile{}
	for _, p := range profiles {
		byID[p.ID] = p
	}
	if byID["D200"].Vehicle != nil {
		t.Fatalf("dangling vehicleId must yield a nil vehicle")
	}
	if byID["D201"].Vehicle == nil || byID["D201"].Vehicle.Plate != "OK-1" {
		t.Fatalf("sibling aggregation must be unaffected")
	}
}

func TestProfileMissingIdentityStillValid(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedDriver(store, "D300", Document{"userId": "U-GONE"})
	core := newTestCore(t, store)

	profiles := core.ListProfiles(ctx)
	if len(profiles) != 1 {
		t.Fatalf("missing identity must not drop the profile")
	}
	p := profiles[0]
	if p.Identity != nil {
		t.Fatalf("unknown user must be recorded as a nil identity")
	}
	if p.Permissions == nil || len(p.Permissions) != 0 {
		t.Fatalf("profile without identity must carry an empty permission set")
	}
}

func TestProfileJoinErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedDriver(store, "D400", Document{"userId": "U400", "vehicleId": "V400"})
	store.put("users", "U400", Document{"roleId": "driver"})
	store.fail("vehicles", errors.New("timeout"))
	core := newTestCore(t, store)

	profiles := core.ListProfiles(ctx)
	if len(profiles) != 1 {
		t.Fatalf("a per-record join failure must stay non-fatal to the batch")
	}
	if profiles[0].Vehicle != nil {
		t.Fatalf("failed vehicle join must be recorded as nil")
	}
	if profiles[0].Identity == nil {
		t.Fatalf("the independent identity join must still complete")
	}
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedDriver(store, "D500", Document{"name": "Rita P", "userId": "U500"})
	store.put("users", "U500", Document{"roleId": "driver"})
	core := newTestCore(t, store)

	p := core.GetProfile(ctx, "D500")
	if p == nil || p.Driver.Name != "Rita P" {
		t.Fatalf("expected aggregated profile, got %+v", p)
	}
	if core.GetProfile(ctx, "D999") != nil {
		t.Fatalf("unknown driver must yield nil, not the fixture")
	}
}

func TestProfileRecursiveTimestampNormalization(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	seedDriver(store, "D600", Document{
		"createdAt": map[string]any{"_seconds": float64(1700000000), "_nanoseconds": float64(0)},
		"trips": []any{
			map[string]any{
				"completedAt": map[string]any{"_seconds": float64(1700000000), "_nanoseconds": float64(0)},
			},
		},
	})
	core := newTestCore(t, store)

	p := core.GetProfile(ctx, "D600")
	if p == nil {
		t.Fatalf("expected profile")
	}
	const wantISO = "2023-11-14T22:13:20Z"
	if got := p.Driver.Raw["createdAt"]; got != wantISO {
		t.Fatalf("top-level epoch map not normalized: %v", got)
	}
	trips, ok := p.Driver.Raw["trips"].([]any)
	if !ok || len(trips) != 1 {
		t.Fatalf("nested structure lost during normalization: %v", p.Driver.Raw["trips"])
	}
	trip, ok := trips[0].(map[string]any)
	if !ok {
		t.Fatalf("nested map lost during normalization")
	}
	if got := trip["completedAt"]; got != wantISO {
		t.Fatalf("epoch map nested in an array not normalized: %v", got)
	}
}

func TestListProfilesHonorsCancellation(t *testing.T) {
	store := newFakeStore()
	for _, id := range []string{"D700", "D701", "D702"} {
		seedDriver(store, id, Document{})
	}
	core := newTestCore(t, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	profiles := core.ListProfiles(ctx)
	// Records not yet started are abandoned; partial output is legitimate.
	if len(profiles) > 3 {
		t.Fatalf("unexpected profile count %d", len(profiles))
	}
}
